package metrics

import "github.com/lowaak/smart-trainer/workout-builder/internal/workout"

// Summary bundles every number displayed alongside the workout chart
type Summary struct {
	TotalDurationSeconds int               `json:"totalDurationSeconds"`
	TSS                  int               `json:"tss"`
	NP                   int               `json:"np"`
	IF                   float64           `json:"if"`
	WorkKJ               int               `json:"workKJ"`
	MaxPowerPercent      int               `json:"maxPowerPercent"`
	ZoneBreakdown        []ZoneShare       `json:"zoneBreakdown"`
	Classification       Classification    `json:"classification"`
	Nutrition            NutritionEstimate `json:"nutrition"`
	CHO2                 CHO2Estimate      `json:"cho2"`
}

// ComputeSummary evaluates every metric for segments at the given FTP
func ComputeSummary(segments []workout.Segment, ftpWatts float64) Summary {
	np := NormalizedPower(segments, ftpWatts)
	tss := TrainingStressScore(segments)
	intensityFactor := 0.0
	if ftpWatts > 0 {
		intensityFactor = roundTo(float64(np)/ftpWatts, 2)
	}

	return Summary{
		TotalDurationSeconds: TotalDurationSeconds(segments),
		TSS:                  tss,
		NP:                   np,
		IF:                   intensityFactor,
		WorkKJ:               Work(segments),
		MaxPowerPercent:      MaxPowerPercent(segments),
		ZoneBreakdown:        ZoneBreakdown(segments),
		Classification:       ClassificationFor(intensityFactor, tss),
		Nutrition:            Nutrition(segments),
		CHO2:                 CarbohydrateOxidation(segments),
	}
}

func (s Summary) clone() Summary {
	out := s
	out.ZoneBreakdown = append([]ZoneShare(nil), s.ZoneBreakdown...)
	out.Nutrition.TimingAdvice = append([]string(nil), s.Nutrition.TimingAdvice...)
	out.Nutrition.HydrationAdvice = append([]string(nil), s.Nutrition.HydrationAdvice...)
	out.Nutrition.PreWorkoutAdvice = append([]string(nil), s.Nutrition.PreWorkoutAdvice...)
	return out
}
