package workout

// Preset ids are stable so presets can be referenced from the CLI and HTTP API
const (
	PresetEndurance30        = "preset-endurance-30"
	PresetFTPTest20          = "preset-ftp-test-20"
	PresetThreshold5x5       = "preset-threshold-5x5"
	PresetRecoverySpin       = "preset-recovery-spin"
	PresetVO2Max4x4          = "preset-vo2max-4x4"
	PresetSweetSpotOverUnder = "preset-sweet-spot-over-under"
)

const minute = 60

// Presets returns the built-in workouts. A new slice is built on every call so
// callers may edit the results freely.
func Presets() []Workout {
	return []Workout{
		{
			ID:          PresetEndurance30,
			Name:        "30 Min Endurance",
			Description: "Steady aerobic riding with a short warmup and cooldown",
			Segments: Segments{
				Ramp{Direction: RampWarmup, Duration: 5 * minute, StartPowerPercent: 40, EndPowerPercent: 60, Cadence: 90},
				Steady{Duration: 20 * minute, PowerPercent: 65, Cadence: 90},
				Ramp{Direction: RampCooldown, Duration: 5 * minute, StartPowerPercent: 60, EndPowerPercent: 40, Cadence: 90},
			},
		},
		{
			ID:          PresetFTPTest20,
			Name:        "20 Min FTP Test",
			Description: "Opener and recovery before a 20 minute maximal sustainable effort",
			Segments: Segments{
				Steady{Duration: 5 * minute, PowerPercent: 50, Cadence: 90},
				Steady{Duration: 3 * minute, PowerPercent: 70, Cadence: 90},
				Steady{Duration: 2 * minute, PowerPercent: 50, Cadence: 90},
				Steady{Duration: 20 * minute, PowerPercent: 105, Cadence: 90},
				Steady{Duration: 5 * minute, PowerPercent: 40, Cadence: 90},
			},
		},
		{
			ID:          PresetThreshold5x5,
			Name:        "5x5 Threshold Intervals",
			Description: "Five threshold efforts with three minute recoveries",
			Segments: Segments{
				Steady{Duration: 5 * minute, PowerPercent: 50, Cadence: 90},
				Interval{Repetitions: 5, OnDuration: 5 * minute, OffDuration: 3 * minute, PowerTarget1Percent: 100, PowerTarget2Percent: 50, Cadence: 90},
				Steady{Duration: 2 * minute, PowerPercent: 50, Cadence: 90},
			},
		},
		{
			ID:          PresetRecoverySpin,
			Name:        "Recovery Spin",
			Description: "Easy spinning for active recovery",
			Segments: Segments{
				Ramp{Direction: RampWarmup, Duration: 10 * minute, StartPowerPercent: 40, EndPowerPercent: 45, Cadence: 90},
				Steady{Duration: 25 * minute, PowerPercent: 45, Cadence: 90},
				Ramp{Direction: RampCooldown, Duration: 10 * minute, StartPowerPercent: 45, EndPowerPercent: 35, Cadence: 90},
			},
		},
		{
			ID:          PresetVO2Max4x4,
			Name:        "VO2max 4x4",
			Description: "Four hard four minute efforts with equal recovery",
			Segments: Segments{
				Steady{Duration: 10 * minute, PowerPercent: 50, Cadence: 90},
				Interval{Repetitions: 4, OnDuration: 4 * minute, OffDuration: 4 * minute, PowerTarget1Percent: 120, PowerTarget2Percent: 50, Cadence: 90},
				Steady{Duration: 6 * minute, PowerPercent: 50, Cadence: 90},
			},
		},
		{
			ID:          PresetSweetSpotOverUnder,
			Name:        "Intervals - 60m",
			Description: "Eight sweet spot efforts over a tempo base",
			Segments: Segments{
				Steady{Duration: 3 * minute, PowerPercent: 65, Cadence: 90},
				Interval{Repetitions: 8, OnDuration: 4 * minute, OffDuration: 3 * minute, PowerTarget1Percent: 90, PowerTarget2Percent: 65, Cadence: 90},
				Ramp{Direction: RampCooldown, Duration: 1 * minute, StartPowerPercent: 65, EndPowerPercent: 40},
			},
		},
	}
}

// PresetByID returns the preset with the given id
func PresetByID(id string) (Workout, bool) {
	for _, w := range Presets() {
		if w.ID == id {
			return w, true
		}
	}
	return Workout{}, false
}
