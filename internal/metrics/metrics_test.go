package metrics

import (
	"io"
	"log"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

func mixedSegments() []workout.Segment {
	return []workout.Segment{
		workout.Ramp{Direction: workout.RampWarmup, Duration: 600, StartPowerPercent: 40, EndPowerPercent: 75, Cadence: 90},
		workout.Steady{Duration: 1200, PowerPercent: 88},
		workout.Interval{Repetitions: 6, OnDuration: 120, OffDuration: 60, PowerTarget1Percent: 115, PowerTarget2Percent: 50},
		workout.Ramp{Direction: workout.RampCooldown, Duration: 300, StartPowerPercent: 60, EndPowerPercent: 35},
	}
}

func reversed(segments []workout.Segment) []workout.Segment {
	out := make([]workout.Segment, len(segments))
	for i, seg := range segments {
		out[len(segments)-1-i] = seg
	}
	return out
}

func TestTotalDurationSeconds(t *testing.T) {
	assert.Equal(t, 0, TotalDurationSeconds(nil))
	assert.Equal(t, 600+1200+6*180+300, TotalDurationSeconds(mixedSegments()))
}

func TestMaxPowerPercent(t *testing.T) {
	assert.Equal(t, DefaultChartMaxPercent, MaxPowerPercent(nil))
	assert.Equal(t, 125, MaxPowerPercent(mixedSegments()))
	assert.Equal(t, 125, MaxPowerPercent([]workout.Segment{workout.Steady{Duration: 60, PowerPercent: 125}}))
	assert.Equal(t, 100, MaxPowerPercent([]workout.Segment{
		workout.Ramp{Direction: workout.RampCooldown, Duration: 60, StartPowerPercent: 76, EndPowerPercent: 20},
	}))
}

func TestTrainingStressScore_ScenarioA(t *testing.T) {
	segments := []workout.Segment{workout.Steady{Duration: 300, PowerPercent: 75}}

	// 300/3600 * 0.75^2 * 100 = 4.6875
	assert.Equal(t, 5, TrainingStressScore(segments))
	// 0.75 * 300/3600 * 3.6 = 0.225
	assert.Equal(t, 0, Work(segments))
}

func TestTrainingStressScore_OneHourAtThreshold(t *testing.T) {
	segments := []workout.Segment{workout.Steady{Duration: 3600, PowerPercent: 100}}
	assert.Equal(t, 100, TrainingStressScore(segments))
	assert.Equal(t, 4, Work(segments))
}

func TestTrainingStressScore_IntervalWeightsSquares(t *testing.T) {
	segments := []workout.Segment{
		workout.Interval{Repetitions: 10, OnDuration: 180, OffDuration: 180, PowerTarget1Percent: 120, PowerTarget2Percent: 60},
	}
	// mean of squares (1.44 + 0.36) / 2 = 0.9 over one hour
	assert.Equal(t, 90, TrainingStressScore(segments))
}

func TestTrainingStressScore_RampUsesMidpoint(t *testing.T) {
	segments := []workout.Segment{
		workout.Ramp{Direction: workout.RampWarmup, Duration: 3600, StartPowerPercent: 50, EndPowerPercent: 90},
	}
	// midpoint 70% -> 0.49 * 100
	assert.Equal(t, 49, TrainingStressScore(segments))
}

func TestNormalizedPower_Steady(t *testing.T) {
	segments := []workout.Segment{workout.Steady{Duration: 300, PowerPercent: 100}}
	assert.Equal(t, 250, NormalizedPower(segments, 250))
	assert.Equal(t, 1.0, IntensityFactor(segments, 250))
}

func TestNormalizedPower_LongSteadyEqualsItsWatts(t *testing.T) {
	segments := []workout.Segment{workout.Steady{Duration: workout.MaxDurationSeconds, PowerPercent: 80}}
	assert.Equal(t, 200, NormalizedPower(segments, 250))
}

func TestNormalizedPower_ShortWorkouts(t *testing.T) {
	assert.Equal(t, 0, NormalizedPower(nil, 250))
	assert.Equal(t, 0, NormalizedPower([]workout.Segment{workout.Steady{Duration: 29, PowerPercent: 100}}, 250))
	assert.Equal(t, 250, NormalizedPower([]workout.Segment{workout.Steady{Duration: 30, PowerPercent: 100}}, 250))
	assert.Equal(t, 0.0, IntensityFactor([]workout.Segment{workout.Steady{Duration: 10, PowerPercent: 100}}, 250))
}

func TestNormalizedPower_VariabilityRaisesNP(t *testing.T) {
	segments := []workout.Segment{
		workout.Interval{Repetitions: 10, OnDuration: 60, OffDuration: 60, PowerTarget1Percent: 150, PowerTarget2Percent: 50},
	}
	np := NormalizedPower(segments, 200)
	// average power is 200 W; smoothing over 30 s keeps the 4th power mean above it
	assert.Greater(t, np, 200)
	assert.Less(t, np, 300)
}

func TestIntensityFactor_NonPositiveFTP(t *testing.T) {
	segments := []workout.Segment{workout.Steady{Duration: 300, PowerPercent: 100}}
	assert.Equal(t, 0.0, IntensityFactor(segments, 0))
	assert.Equal(t, 0.0, IntensityFactor(segments, -10))
}

func TestWork_IntervalUsesWeightedAverage(t *testing.T) {
	segments := []workout.Segment{
		workout.Interval{Repetitions: 100, OnDuration: 30, OffDuration: 90, PowerTarget1Percent: 200, PowerTarget2Percent: 100},
	}
	// 12000 s at a mean of 125% -> 1.25 * 3.33.. * 3.6 = 15
	assert.Equal(t, 15, Work(segments))
}

func TestClassificationFor(t *testing.T) {
	tests := []struct {
		intensityFactor float64
		tss             int
		want            Classification
	}{
		{0.5, 20, Classification{Type: "Endurance", EnergySystem: "Aerobic", Recovery: "12-24 hours"}},
		{0.75, 99, Classification{Type: "Tempo", EnergySystem: "Aerobic + Lactate Threshold", Recovery: "12-24 hours"}},
		{0.85, 100, Classification{Type: "Threshold", EnergySystem: "Lactate Threshold", Recovery: "24-36 hours"}},
		{0.95, 250, Classification{Type: "VO2max", EnergySystem: "VO2max + Anaerobic", Recovery: "36-48 hours"}},
		{1.05, 300, Classification{Type: "Anaerobic", EnergySystem: "Anaerobic + Neuromuscular", Recovery: "48+ hours"}},
		{1.5, 1000, Classification{Type: "Anaerobic", EnergySystem: "Anaerobic + Neuromuscular", Recovery: "48+ hours"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassificationFor(tt.intensityFactor, tt.tss), "IF %v TSS %d", tt.intensityFactor, tt.tss)
	}
}

func TestClassify_SteadyTempoHour(t *testing.T) {
	segments := []workout.Segment{workout.Steady{Duration: 3600, PowerPercent: 75}}
	// NP is 187.5 W either side of rounding, IF 0.75, TSS 56
	got := Classify(segments, 250)
	assert.Equal(t, "Tempo", got.Type)
	assert.Equal(t, "12-24 hours", got.Recovery)
}

func TestOrderIndependentAggregates(t *testing.T) {
	const ftp = 260
	segments := mixedSegments()
	shuffled := []workout.Segment{segments[2], segments[0], segments[3], segments[1]}

	for _, other := range [][]workout.Segment{shuffled, reversed(segments)} {
		assert.Equal(t, TrainingStressScore(segments), TrainingStressScore(other))
		assert.Equal(t, Work(segments), Work(other))
		assert.Equal(t, Nutrition(segments), Nutrition(other))
		assert.Equal(t, CarbohydrateOxidation(segments), CarbohydrateOxidation(other))
		assert.InDelta(t, TimeInZones(segments).Total(), TimeInZones(other).Total(), 1e-9)
		assert.NotEqual(t, Timeline(segments), Timeline(other))
	}
}

func TestNormalizedPower_OrderOfConstantSegments(t *testing.T) {
	segments := []workout.Segment{
		workout.Steady{Duration: 600, PowerPercent: 110},
		workout.Steady{Duration: 900, PowerPercent: 55},
		workout.Steady{Duration: 300, PowerPercent: 80},
	}
	assert.Equal(t, NormalizedPower(segments, 250), NormalizedPower(reversed(segments), 250))
	assert.Equal(t, IntensityFactor(segments, 250), IntensityFactor(reversed(segments), 250))

	swapped := []workout.Segment{segments[1], segments[0]}
	assert.Equal(t, NormalizedPower(segments[:2], 250), NormalizedPower(swapped, 250))
}

func TestComputeSummary_Empty(t *testing.T) {
	summary := ComputeSummary(nil, 250)

	assert.Equal(t, 0, summary.TotalDurationSeconds)
	assert.Equal(t, 0, summary.TSS)
	assert.Equal(t, 0, summary.NP)
	assert.Equal(t, 0.0, summary.IF)
	assert.Equal(t, 0, summary.WorkKJ)
	assert.Equal(t, DefaultChartMaxPercent, summary.MaxPowerPercent)
	require.Len(t, summary.ZoneBreakdown, 6)
	for _, share := range summary.ZoneBreakdown {
		assert.Zero(t, share.Seconds)
		assert.Zero(t, share.Percent)
	}
	assert.Equal(t, NutritionEstimate{}, summary.Nutrition)
	assert.Equal(t, "Endurance", summary.Classification.Type)
}

func TestComputeSummary_MatchesIndividualFunctions(t *testing.T) {
	segments := mixedSegments()
	summary := ComputeSummary(segments, 280)

	assert.Equal(t, TotalDurationSeconds(segments), summary.TotalDurationSeconds)
	assert.Equal(t, TrainingStressScore(segments), summary.TSS)
	assert.Equal(t, NormalizedPower(segments, 280), summary.NP)
	assert.Equal(t, IntensityFactor(segments, 280), summary.IF)
	assert.Equal(t, Work(segments), summary.WorkKJ)
	assert.Equal(t, Classify(segments, 280), summary.Classification)
	assert.Equal(t, Nutrition(segments), summary.Nutrition)
	assert.Equal(t, ZoneBreakdown(segments), summary.ZoneBreakdown)
}

func TestComputeSummary_DoesNotMutateInput(t *testing.T) {
	segments := mixedSegments()
	before := append([]workout.Segment(nil), segments...)
	_ = ComputeSummary(segments, 250)
	_ = Timeline(segments)
	assert.Equal(t, before, segments)
}

func TestEngine_MemoizesSummaries(t *testing.T) {
	engine, err := NewEngine(2, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	segments := mixedSegments()
	first := engine.Summary(segments, 250)
	second := engine.Summary(segments, 250)

	assert.Equal(t, first, second)
	assert.Equal(t, ComputeSummary(segments, 250), first)
	assert.Equal(t, 1, engine.CachedSummaries())

	_ = engine.Summary(segments, 300)
	assert.Equal(t, 2, engine.CachedSummaries())

	// Mutating a returned summary must not leak into the cache
	first.ZoneBreakdown[0].Seconds = -1
	assert.NotEqual(t, -1.0, engine.Summary(segments, 250).ZoneBreakdown[0].Seconds)
}

func TestEngine_DistinguishesSegmentKinds(t *testing.T) {
	engine, err := NewEngine(0, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	warmup := []workout.Segment{workout.Ramp{Direction: workout.RampWarmup, Duration: 600, StartPowerPercent: 50, EndPowerPercent: 50}}
	steady := []workout.Segment{workout.Steady{Duration: 600, PowerPercent: 50}}

	_ = engine.Summary(warmup, 250)
	_ = engine.Summary(steady, 250)
	assert.Equal(t, 2, engine.CachedSummaries())
}

func TestComputeSummary_OutOfRangeAndEmptySegments(t *testing.T) {
	tests := map[string]workout.Segment{
		"negative steady":         workout.Steady{Duration: -300, PowerPercent: 75},
		"huge steady":             workout.Steady{Duration: 2000000000, PowerPercent: 80},
		"zero steady":             workout.Steady{PowerPercent: 75},
		"zero length ramp":        workout.Ramp{Direction: workout.RampWarmup, StartPowerPercent: 50, EndPowerPercent: 70},
		"negative ramp":           workout.Ramp{Direction: workout.RampCooldown, Duration: -60, StartPowerPercent: 60},
		"no repetitions":          workout.Interval{OnDuration: 30, OffDuration: 30, PowerTarget1Percent: 100},
		"negative repetitions":    workout.Interval{Repetitions: -2, OnDuration: 30, OffDuration: 30, PowerTarget1Percent: 100},
		"negative on duration":    workout.Interval{Repetitions: 2, OnDuration: -30, OffDuration: 60, PowerTarget1Percent: 100},
		"overflowing repetitions": workout.Interval{Repetitions: math.MaxInt / 2, OnDuration: 3, OffDuration: 3, PowerTarget1Percent: 100},
		"nil":                     nil,
	}
	valid := workout.Steady{Duration: 600, PowerPercent: 100}
	expected := ComputeSummary([]workout.Segment{valid}, 250)

	for name, seg := range tests {
		t.Run(name, func(t *testing.T) {
			segments := []workout.Segment{seg}
			var summary Summary
			var points []TimelinePoint
			require.NotPanics(t, func() {
				summary = ComputeSummary(segments, 250)
				points = Timeline(segments)
			})

			assert.Equal(t, 0, summary.TotalDurationSeconds)
			assert.Equal(t, 0, summary.TSS)
			assert.Equal(t, 0, summary.NP)
			assert.Equal(t, 0, summary.WorkKJ)
			assert.Equal(t, NutritionEstimate{}, summary.Nutrition)
			assert.Equal(t, CHO2Estimate{}, summary.CHO2)
			for _, p := range points {
				assert.Zero(t, p.EndMinute)
			}

			mixed := ComputeSummary([]workout.Segment{seg, valid}, 250)
			assert.Equal(t, expected.TotalDurationSeconds, mixed.TotalDurationSeconds)
			assert.Equal(t, expected.TSS, mixed.TSS)
			assert.Equal(t, expected.NP, mixed.NP)
			assert.Equal(t, expected.ZoneBreakdown, mixed.ZoneBreakdown)
			assert.Equal(t, expected.Nutrition, mixed.Nutrition)
		})
	}
}
