// Package metrics derives chart data and training metrics from a workout's
// segment list. Every function is pure: the same segments (and FTP) always
// produce the same result and the input is never modified.
package metrics

import (
	"math"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// DefaultChartMaxPercent is the chart scale used when there are no segments
const DefaultChartMaxPercent = 200

// TotalDurationSeconds sums the duration of every segment
func TotalDurationSeconds(segments []workout.Segment) int {
	total := 0
	for _, seg := range segments {
		total += segmentSeconds(seg)
	}
	return total
}

// inRange reports whether seg is within workout.CheckLimits. Segments outside
// the limits contribute nothing to any metric.
func inRange(seg workout.Segment) bool {
	return workout.CheckLimits(seg) == nil
}

// segmentSeconds is the duration of seg, or 0 when it is out of range
func segmentSeconds(seg workout.Segment) int {
	if !inRange(seg) {
		return 0
	}
	return seg.DurationSeconds()
}

// MaxPowerPercent returns the highest power touched by any segment, rounded up
// to the next multiple of 25
func MaxPowerPercent(segments []workout.Segment) int {
	if len(segments) == 0 {
		return DefaultChartMaxPercent
	}
	maxPower := 0.0
	for _, seg := range segments {
		switch s := seg.(type) {
		case workout.Steady:
			maxPower = math.Max(maxPower, s.PowerPercent)
		case workout.Ramp:
			maxPower = math.Max(maxPower, math.Max(s.StartPowerPercent, s.EndPowerPercent))
		case workout.Interval:
			maxPower = math.Max(maxPower, math.Max(s.PowerTarget1Percent, s.PowerTarget2Percent))
		}
	}
	return int(math.Ceil(maxPower/25) * 25)
}

// averagePercent is the representative intensity of a segment used by work
// and nutrition: the steady power, the duration weighted mean of an
// interval's work and rest targets, or the midpoint of a ramp
func averagePercent(seg workout.Segment) float64 {
	switch s := seg.(type) {
	case workout.Steady:
		return s.PowerPercent
	case workout.Ramp:
		return (s.StartPowerPercent + s.EndPowerPercent) / 2
	case workout.Interval:
		on, off := float64(s.OnSeconds()), float64(s.OffSeconds())
		if on+off == 0 {
			return 0
		}
		return (s.PowerTarget1Percent*on + s.PowerTarget2Percent*off) / (on + off)
	}
	return 0
}

// squaredIntensity is the per-segment (power/100)^2 term of the training
// stress score. Intervals weight the squares of both targets by time; ramps
// square their midpoint.
func squaredIntensity(seg workout.Segment) float64 {
	switch s := seg.(type) {
	case workout.Steady:
		return square(s.PowerPercent / 100)
	case workout.Ramp:
		return square((s.StartPowerPercent + s.EndPowerPercent) / 2 / 100)
	case workout.Interval:
		on, off := float64(s.OnSeconds()), float64(s.OffSeconds())
		if on+off == 0 {
			return 0
		}
		return (on*square(s.PowerTarget1Percent/100) + off*square(s.PowerTarget2Percent/100)) / (on + off)
	}
	return 0
}

// powerAt returns the target power of a segment elapsed seconds into it
func powerAt(seg workout.Segment, elapsed int) float64 {
	switch s := seg.(type) {
	case workout.Steady:
		return s.PowerPercent
	case workout.Ramp:
		if s.Duration <= 0 {
			return s.StartPowerPercent
		}
		progress := float64(elapsed) / float64(s.Duration)
		return s.StartPowerPercent + (s.EndPowerPercent-s.StartPowerPercent)*progress
	case workout.Interval:
		cycle := s.OnDuration + s.OffDuration
		if cycle <= 0 {
			return 0
		}
		if elapsed%cycle < s.OnDuration {
			return s.PowerTarget1Percent
		}
		return s.PowerTarget2Percent
	}
	return 0
}

func square(v float64) float64 { return v * v }

// round rounds half up, matching how the displayed values have always been rounded
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+0.5) / scale
}
