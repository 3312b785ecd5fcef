package metrics

import (
	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
	"github.com/lowaak/smart-trainer/workout-builder/internal/zones"
)

// rampZoneSamples is how many evenly spaced points of a ramp are bucketed
const rampZoneSamples = 10

// ZoneTimes holds seconds spent in each zone of zones.Table
type ZoneTimes [zones.Count]float64

// Total returns the summed seconds across all zones
func (z ZoneTimes) Total() float64 {
	total := 0.0
	for _, seconds := range z {
		total += seconds
	}
	return total
}

// TimeInZones buckets the workout's time by power zone. Intervals contribute
// their total work and rest time in one addition each; ramps are sampled.
func TimeInZones(segments []workout.Segment) ZoneTimes {
	var times ZoneTimes
	for _, seg := range segments {
		if !inRange(seg) {
			continue
		}
		switch s := seg.(type) {
		case workout.Steady:
			times[zones.IndexOf(s.PowerPercent)] += float64(s.Duration)

		case workout.Interval:
			times[zones.IndexOf(s.PowerTarget1Percent)] += float64(s.OnSeconds())
			times[zones.IndexOf(s.PowerTarget2Percent)] += float64(s.OffSeconds())

		case workout.Ramp:
			perSample := float64(s.Duration) / rampZoneSamples
			for i := 0; i < rampZoneSamples; i++ {
				progress := float64(i) / rampZoneSamples
				power := s.StartPowerPercent + (s.EndPowerPercent-s.StartPowerPercent)*progress
				times[zones.IndexOf(power)] += perSample
			}
		}
	}
	return times
}

// ZonePercentages returns each zone's share of the total time, in percent
// rounded to one decimal. An empty breakdown yields all zeros.
func ZonePercentages(times ZoneTimes) [zones.Count]float64 {
	var shares [zones.Count]float64
	total := times.Total()
	if total == 0 {
		return shares
	}
	for i, seconds := range times {
		shares[i] = roundTo(seconds/total*100, 1)
	}
	return shares
}

// ZoneShare is one row of the zone breakdown shown next to the chart
type ZoneShare struct {
	Zone    string  `json:"zone"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Seconds float64 `json:"seconds"`
	Percent float64 `json:"percent"`
}

// ZoneBreakdown pairs the zone table with the time and share spent in each zone
func ZoneBreakdown(segments []workout.Segment) []ZoneShare {
	times := TimeInZones(segments)
	shares := ZonePercentages(times)
	out := make([]ZoneShare, zones.Count)
	for i, zone := range zones.Table {
		out[i] = ZoneShare{
			Zone:    zone.Name,
			Label:   zone.Label,
			Color:   zone.Color,
			Seconds: times[i],
			Percent: shares[i],
		}
	}
	return out
}
