package metrics

import "github.com/lowaak/smart-trainer/workout-builder/internal/workout"

// caloriesPerHourAtFTP assumes one hour at FTP burns roughly 800 kcal
const caloriesPerHourAtFTP = 800

const (
	baseHydrationMLPerHour  = 500
	extraHydrationMLPerHour = 250
	hydrationIntensityLimit = 75 // Above this mean intensity extra fluid is advised
)

// NutritionEstimate is the fueling guidance for a workout
type NutritionEstimate struct {
	Calories         int      `json:"calories"`
	Carbs            int      `json:"carbs"`        // Grams for the whole workout
	CarbsPerHour     int      `json:"carbsPerHour"` // Grams per hour
	Hydration        int      `json:"hydration"`    // Millilitres for the whole workout
	DurationMinutes  float64  `json:"durationMinutes"`
	Intensity        int      `json:"intensity"` // Mean power as % of FTP
	TimingAdvice     []string `json:"timingAdvice,omitempty"`
	HydrationAdvice  []string `json:"hydrationAdvice,omitempty"`
	PreWorkoutAdvice []string `json:"preWorkoutAdvice,omitempty"`
}

// CHO2Estimate is the carbohydrate oxidation estimate summed segment by segment
type CHO2Estimate struct {
	Total      int `json:"total"`      // Grams
	HourlyRate int `json:"hourlyRate"` // Grams per hour at the workout's mean intensity
}

var preWorkoutAdvice = []string{
	"Eat a light meal 2-3 hours before",
	"Optional: 20g carbs 30 minutes before",
}

// Nutrition estimates energy, carbohydrate and fluid needs from the duration
// weighted mean intensity of the workout
func Nutrition(segments []workout.Segment) NutritionEstimate {
	totalSeconds := TotalDurationSeconds(segments)
	if totalSeconds <= 0 {
		return NutritionEstimate{}
	}
	intensity := meanIntensity(segments, totalSeconds)
	hours := float64(totalSeconds) / 3600
	minutes := float64(totalSeconds) / 60

	carbsPerHour := CarbsPerHour(intensity)
	hydrationPerHour := float64(baseHydrationMLPerHour)
	if intensity > hydrationIntensityLimit {
		hydrationPerHour += extraHydrationMLPerHour
	}

	estimate := NutritionEstimate{
		Calories:        round(caloriesPerHourAtFTP * intensity / 100 * hours),
		Carbs:           round(float64(carbsPerHour) * hours),
		CarbsPerHour:    carbsPerHour,
		Hydration:       round(hydrationPerHour * hours),
		DurationMinutes: minutes,
		Intensity:       round(intensity),
	}
	estimate.TimingAdvice = NutritionTiming(minutes)
	estimate.HydrationAdvice = HydrationTips(float64(estimate.Intensity))
	estimate.PreWorkoutAdvice = append([]string(nil), preWorkoutAdvice...)
	return estimate
}

// CarbohydrateOxidation sums the tiered carbohydrate rate of each segment over
// its own duration, and reports the tier of the mean intensity as the hourly rate
func CarbohydrateOxidation(segments []workout.Segment) CHO2Estimate {
	totalSeconds := TotalDurationSeconds(segments)
	if totalSeconds <= 0 {
		return CHO2Estimate{}
	}
	total := 0.0
	for _, seg := range segments {
		hours := float64(segmentSeconds(seg)) / 3600
		total += float64(CarbsPerHour(averagePercent(seg))) * hours
	}
	return CHO2Estimate{
		Total:      round(total),
		HourlyRate: CarbsPerHour(meanIntensity(segments, totalSeconds)),
	}
}

// CarbsPerHour maps a mean intensity (% FTP) to a carbohydrate intake rate in g/h
func CarbsPerHour(intensity float64) int {
	switch {
	case intensity < 50:
		return 30
	case intensity < 75:
		return 45
	case intensity < 85:
		return 60
	}
	return 90
}

// NutritionTiming returns fueling timing advice for a workout of the given length
func NutritionTiming(durationMinutes float64) []string {
	switch {
	case durationMinutes > 60:
		return []string{
			"Start fueling 45-60 minutes into the workout",
			"Consume 20-30g carbs every 30 minutes",
		}
	case durationMinutes > 30:
		return []string{"Consider taking 20-30g carbs mid-workout"}
	}
	return nil
}

// HydrationTips returns hydration advice for the given mean intensity
func HydrationTips(intensity float64) []string {
	tips := []string{
		"Drink to thirst throughout the workout",
		"Aim to replace 80% of sweat losses",
	}
	if intensity > hydrationIntensityLimit {
		tips = append(tips,
			"Consider electrolyte replacement",
			"Pre-hydrate with 400-600ml 2-3 hours before",
		)
	}
	return tips
}

func meanIntensity(segments []workout.Segment, totalSeconds int) float64 {
	weighted := 0.0
	for _, seg := range segments {
		weighted += averagePercent(seg) * float64(segmentSeconds(seg))
	}
	return weighted / float64(totalSeconds)
}
