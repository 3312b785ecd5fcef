package metrics

import "github.com/lowaak/smart-trainer/workout-builder/internal/workout"

// Classification describes the workout's character and suggested recovery
type Classification struct {
	Type         string `json:"type"`
	EnergySystem string `json:"energySystem"`
	Recovery     string `json:"recovery"`
}

type intensityClass struct {
	below        float64 // Upper bound on IF, exclusive
	kind         string
	energySystem string
}

var intensityClasses = []intensityClass{
	{below: 0.75, kind: "Endurance", energySystem: "Aerobic"},
	{below: 0.85, kind: "Tempo", energySystem: "Aerobic + Lactate Threshold"},
	{below: 0.95, kind: "Threshold", energySystem: "Lactate Threshold"},
	{below: 1.05, kind: "VO2max", energySystem: "VO2max + Anaerobic"},
}

var topIntensityClass = intensityClass{kind: "Anaerobic", energySystem: "Anaerobic + Neuromuscular"}

type recoveryBand struct {
	below int // Upper bound on TSS, exclusive
	label string
}

var recoveryBands = []recoveryBand{
	{below: 100, label: "12-24 hours"},
	{below: 200, label: "24-36 hours"},
	{below: 300, label: "36-48 hours"},
}

const longestRecovery = "48+ hours"

// Classify labels the workout from its intensity factor and training stress score
func Classify(segments []workout.Segment, ftpWatts float64) Classification {
	return ClassificationFor(IntensityFactor(segments, ftpWatts), TrainingStressScore(segments))
}

// ClassificationFor is the threshold lookup behind Classify
func ClassificationFor(intensityFactor float64, tss int) Classification {
	class := topIntensityClass
	for _, c := range intensityClasses {
		if intensityFactor < c.below {
			class = c
			break
		}
	}

	recovery := longestRecovery
	for _, band := range recoveryBands {
		if tss < band.below {
			recovery = band.label
			break
		}
	}

	return Classification{Type: class.kind, EnergySystem: class.energySystem, Recovery: recovery}
}
