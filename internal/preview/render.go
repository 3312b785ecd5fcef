package preview

import (
	"fmt"
	"math"
	"strings"

	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

const zoneBarWidth = 30

// entrySecondaryText is the second line of a workout list row
func entrySecondaryText(e Entry) string {
	return fmt.Sprintf("%s · %s · %d segments",
		e.Source, workout.FormatDuration(e.Workout.TotalDuration()), len(e.Workout.Segments))
}

// zoneBar draws percent (0-100) as a bar of zoneBarWidth cells
func zoneBar(percent float64) string {
	cells := int(math.Floor(percent/100*zoneBarWidth + 0.5))
	cells = max(0, min(zoneBarWidth, cells))
	return strings.Repeat("█", cells) + strings.Repeat("·", zoneBarWidth-cells)
}

// formatSelection renders the detail pane using tview color tags
func formatSelection(sel Selection) string {
	if sel.Index < 0 {
		text := "\n\n  [yellow]Workout Preview[white]\n\n"
		text += "  Select a workout from the list to view its metrics.\n"
		return text
	}

	w := sel.Entry.Workout
	s := sel.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "\n  [yellow]%s[white] [gray](%s)[white]\n", tview.Escape(w.Name), sel.Entry.Source)
	if w.Description != "" {
		fmt.Fprintf(&b, "  [gray]%s[white]\n", tview.Escape(w.Description))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  [gray]Duration:[white] %s    [gray]FTP:[white] %g W\n", workout.FormatDuration(s.TotalDurationSeconds), sel.FTP)
	fmt.Fprintf(&b, "  [gray]TSS:[white] %d    [gray]IF:[white] %.2f    [gray]NP:[white] %d W    [gray]Work:[white] %d kJ\n",
		s.TSS, s.IF, s.NP, s.WorkKJ)
	fmt.Fprintf(&b, "  [gray]Type:[white] %s    [gray]Energy system:[white] %s\n", s.Classification.Type, s.Classification.EnergySystem)
	fmt.Fprintf(&b, "  [gray]Recovery:[white] %s\n\n", s.Classification.Recovery)

	b.WriteString("  [gray]Time in zones:[white]\n")
	for _, z := range s.ZoneBreakdown {
		fmt.Fprintf(&b, "  [%s]%s %-10s %s[white] %5.1f%%\n", z.Color, z.Zone, z.Label, zoneBar(z.Percent), z.Percent)
	}

	b.WriteString("\n  [gray]Structure:[white]\n")
	if len(w.Segments) == 0 {
		b.WriteString("    [gray]No segments[white]\n")
	}
	for i, seg := range w.Segments {
		fmt.Fprintf(&b, "    %d. %s\n", i+1, tview.Escape(workout.Describe(seg)))
	}

	n := s.Nutrition
	if n.DurationMinutes > 0 {
		b.WriteString("\n  [gray]Fuelling:[white]\n")
		fmt.Fprintf(&b, "    %d kcal, %d g carbs (%d g/h), %d ml fluid\n", n.Calories, n.Carbs, n.CarbsPerHour, n.Hydration)
		for _, tip := range n.TimingAdvice {
			fmt.Fprintf(&b, "    - %s\n", tip)
		}
	}

	b.WriteString("\n  [yellow]+[white]/[yellow]-[white] FTP  |  [yellow]s[white] Save  |  [yellow]d[white] Delete  |  [yellow]e[white] Export  |  [yellow]Esc[white] Quit\n")
	return b.String()
}
