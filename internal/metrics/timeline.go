package metrics

import "github.com/lowaak/smart-trainer/workout-builder/internal/workout"

// rampSteps is the number of sub-intervals a ramp is drawn with
const rampSteps = 60

// TimelinePoint is one constant (or, for ramps, linearly changing) stretch of
// the power profile. Times are in minutes from the start of the workout.
type TimelinePoint struct {
	StartMinute     float64  `json:"startMinute"`
	EndMinute       float64  `json:"endMinute"`
	PowerPercent    float64  `json:"powerPercent"`
	EndPowerPercent *float64 `json:"endPowerPercent,omitempty"` // Only set on ramp sub-intervals
}

// Timeline expands segments into chart points in chronological order.
// Segments outside workout.CheckLimits are left out.
func Timeline(segments []workout.Segment) []TimelinePoint {
	points := make([]TimelinePoint, 0, len(segments))
	current := 0.0

	for _, seg := range segments {
		if !inRange(seg) {
			continue
		}
		switch s := seg.(type) {
		case workout.Steady:
			points = append(points, TimelinePoint{
				StartMinute:  current / 60,
				EndMinute:    (current + float64(s.Duration)) / 60,
				PowerPercent: s.PowerPercent,
			})
			current += float64(s.Duration)

		case workout.Interval:
			for rep := 0; rep < s.Repetitions; rep++ {
				points = append(points, TimelinePoint{
					StartMinute:  current / 60,
					EndMinute:    (current + float64(s.OnDuration)) / 60,
					PowerPercent: s.PowerTarget1Percent,
				})
				current += float64(s.OnDuration)

				points = append(points, TimelinePoint{
					StartMinute:  current / 60,
					EndMinute:    (current + float64(s.OffDuration)) / 60,
					PowerPercent: s.PowerTarget2Percent,
				})
				current += float64(s.OffDuration)
			}

		case workout.Ramp:
			duration := float64(s.Duration)
			powerStep := (s.EndPowerPercent - s.StartPowerPercent) / (rampSteps - 1)
			for i := 0; i < rampSteps; i++ {
				end := s.StartPowerPercent + float64(i+1)*powerStep
				points = append(points, TimelinePoint{
					StartMinute:     (current + duration*float64(i)/rampSteps) / 60,
					EndMinute:       (current + duration*float64(i+1)/rampSteps) / 60,
					PowerPercent:    s.StartPowerPercent + float64(i)*powerStep,
					EndPowerPercent: &end,
				})
			}
			current += duration
		}
	}
	return points
}
