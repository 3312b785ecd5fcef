package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

func TestNutrition_Empty(t *testing.T) {
	assert.Equal(t, NutritionEstimate{}, Nutrition(nil))
	assert.Equal(t, CHO2Estimate{}, CarbohydrateOxidation(nil))
}

func TestNutrition_HourAtEightyPercent(t *testing.T) {
	estimate := Nutrition([]workout.Segment{workout.Steady{Duration: 3600, PowerPercent: 80}})

	assert.Equal(t, 640, estimate.Calories)
	assert.Equal(t, 60, estimate.CarbsPerHour)
	assert.Equal(t, 60, estimate.Carbs)
	assert.Equal(t, 750, estimate.Hydration)
	assert.Equal(t, 60.0, estimate.DurationMinutes)
	assert.Equal(t, 80, estimate.Intensity)
	assert.Equal(t, []string{"Consider taking 20-30g carbs mid-workout"}, estimate.TimingAdvice)
	assert.Len(t, estimate.HydrationAdvice, 4)
	assert.Len(t, estimate.PreWorkoutAdvice, 2)
}

func TestNutrition_LongEasyRide(t *testing.T) {
	estimate := Nutrition([]workout.Segment{
		workout.Steady{Duration: 5400, PowerPercent: 60},
		workout.Ramp{Direction: workout.RampCooldown, Duration: 1800, StartPowerPercent: 60, EndPowerPercent: 40},
	})
	// mean intensity (60*5400 + 50*1800) / 7200 = 57.5
	assert.Equal(t, 58, estimate.Intensity)
	assert.Equal(t, 45, estimate.CarbsPerHour)
	assert.Equal(t, 90, estimate.Carbs)
	assert.Equal(t, 920, estimate.Calories)
	assert.Equal(t, 1000, estimate.Hydration)
	assert.Len(t, estimate.TimingAdvice, 2)
	assert.Len(t, estimate.HydrationAdvice, 2)
}

func TestCarbsPerHour(t *testing.T) {
	assert.Equal(t, 30, CarbsPerHour(49.9))
	assert.Equal(t, 45, CarbsPerHour(50))
	assert.Equal(t, 60, CarbsPerHour(75))
	assert.Equal(t, 90, CarbsPerHour(85))
	assert.Equal(t, 90, CarbsPerHour(130))
}

func TestNutritionTiming(t *testing.T) {
	assert.Empty(t, NutritionTiming(30))
	assert.Len(t, NutritionTiming(45), 1)
	assert.Len(t, NutritionTiming(61), 2)
}

func TestHydrationTips(t *testing.T) {
	assert.Len(t, HydrationTips(75), 2)
	assert.Len(t, HydrationTips(76), 4)
}

func TestCarbohydrateOxidation_SumsPerSegmentTiers(t *testing.T) {
	got := CarbohydrateOxidation([]workout.Segment{
		workout.Steady{Duration: 1800, PowerPercent: 40},
		workout.Steady{Duration: 1800, PowerPercent: 90},
	})
	assert.Equal(t, CHO2Estimate{Total: 60, HourlyRate: 45}, got)
}
