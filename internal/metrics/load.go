package metrics

import (
	"math"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

// rollingWindowSeconds is the normalized power smoothing window
const rollingWindowSeconds = 30

// TrainingStressScore returns the duration weighted mean of (power/100)^2
// scaled by the workout length in hours, times 100
func TrainingStressScore(segments []workout.Segment) int {
	if len(segments) == 0 {
		return 0
	}
	totalStress := 0.0
	totalSeconds := 0.0
	for _, seg := range segments {
		duration := float64(segmentSeconds(seg))
		totalStress += duration * squaredIntensity(seg)
		totalSeconds += duration
	}
	if totalSeconds == 0 {
		return 0
	}
	hours := totalSeconds / 3600
	return round(totalStress / totalSeconds * hours * 100)
}

// NormalizedPower walks the workout one second at a time, smooths the watts
// with a 30 second trailing average and returns the fourth root of the mean
// fourth power. Workouts shorter than the window have no normalized power.
func NormalizedPower(segments []workout.Segment, ftpWatts float64) int {
	var window [rollingWindowSeconds]float64
	sum := 0.0
	totalFourth := 0.0
	count := 0
	second := 0

	for _, seg := range segments {
		duration := segmentSeconds(seg)
		for i := 0; i < duration; i++ {
			watts := powerAt(seg, i) * ftpWatts / 100
			slot := second % rollingWindowSeconds
			sum += watts - window[slot]
			window[slot] = watts
			second++
			if second >= rollingWindowSeconds {
				totalFourth += math.Pow(sum/rollingWindowSeconds, 4)
				count++
			}
		}
	}
	if count == 0 {
		return 0
	}
	return round(math.Pow(totalFourth/float64(count), 0.25))
}

// IntensityFactor is normalized power relative to FTP, rounded to 2 decimals
func IntensityFactor(segments []workout.Segment, ftpWatts float64) float64 {
	if ftpWatts <= 0 {
		return 0
	}
	return roundTo(float64(NormalizedPower(segments, ftpWatts))/ftpWatts, 2)
}

// Work returns the workout energy estimate in kilojoules
func Work(segments []workout.Segment) int {
	total := 0.0
	for _, seg := range segments {
		hours := float64(segmentSeconds(seg)) / 3600
		total += averagePercent(seg) / 100 * hours * 3.6
	}
	return round(total)
}
