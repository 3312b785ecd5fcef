package zones

// PowerZone is one band of the power zone table. MinPercent is inclusive and
// MaxPercent exclusive, except for the last zone which also absorbs every
// value above its MaxPercent.
type PowerZone struct {
	Name       string
	Label      string
	MinPercent float64
	MaxPercent float64
	Color      string
}

// Count is the number of zones in the table
const Count = 6

// Table is ordered ascending and contiguous from 0% FTP
var Table = [Count]PowerZone{
	{Name: "Z1", Label: "Recovery", MinPercent: 0, MaxPercent: 55, Color: "#CCCCCC"},
	{Name: "Z2", Label: "Endurance", MinPercent: 55, MaxPercent: 75, Color: "#59C3E2"},
	{Name: "Z3", Label: "Tempo", MinPercent: 75, MaxPercent: 90, Color: "#84CF2B"},
	{Name: "Z4", Label: "Threshold", MinPercent: 90, MaxPercent: 105, Color: "#F4C01A"},
	{Name: "Z5", Label: "VO2 Max", MinPercent: 105, MaxPercent: 120, Color: "#F37021"},
	{Name: "Z6", Label: "Anaerobic", MinPercent: 120, MaxPercent: 150, Color: "#D22E1F"},
}

// IndexOf returns the index of the zone containing powerPercent. Values below
// the first zone clamp to Z1 and values at or above the top clamp to Z6.
func IndexOf(powerPercent float64) int {
	for i, zone := range Table {
		if powerPercent >= zone.MinPercent && powerPercent < zone.MaxPercent {
			return i
		}
	}
	if powerPercent < Table[0].MinPercent {
		return 0
	}
	return Count - 1
}

// For returns the zone containing powerPercent
func For(powerPercent float64) PowerZone {
	return Table[IndexOf(powerPercent)]
}

// DisplayName returns e.g. "Z3 (Tempo)"
func (z PowerZone) DisplayName() string {
	return z.Name + " (" + z.Label + ")"
}
