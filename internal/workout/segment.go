package workout

import "fmt"

// Kind identifies the variant of a Segment
type Kind string

const (
	KindSteady   Kind = "steady"
	KindWarmup   Kind = "warmup"
	KindCooldown Kind = "cooldown"
	KindInterval Kind = "interval"
)

// Limits on segment structure. A workout's total duration is bounded by
// MaxDurationSeconds as well.
const (
	MaxDurationSeconds = 24 * 3600
	MaxRepetitions     = 1000
)

// RampDirection distinguishes warmup ramps from cooldown ramps
type RampDirection int

const (
	RampWarmup RampDirection = iota
	RampCooldown
)

// String returns the segment kind for the ramp direction
func (d RampDirection) String() string {
	if d == RampCooldown {
		return string(KindCooldown)
	}
	return string(KindWarmup)
}

// Segment is one block of a workout timeline. The set of implementations is
// closed: Steady, Ramp and Interval. Consumers switch on the concrete type.
type Segment interface {
	Kind() Kind
	DurationSeconds() int // Total seconds the segment occupies on the timeline
	CadenceRPM() int      // Target cadence, 0 when absent
	Validate() error
	isSegment()
}

// Steady holds a constant power target
type Steady struct {
	Duration     int     // Seconds
	PowerPercent float64 // % of FTP
	Cadence      int     // RPM, 0 means no target
}

// Ramp changes power linearly from StartPowerPercent to EndPowerPercent
type Ramp struct {
	Direction         RampDirection
	Duration          int // Seconds
	StartPowerPercent float64
	EndPowerPercent   float64
	Cadence           int
}

// Interval repeats a work/rest pair Repetitions times
type Interval struct {
	Repetitions         int
	OnDuration          int     // Work seconds per repetition
	OffDuration         int     // Rest seconds per repetition
	PowerTarget1Percent float64 // Work power
	PowerTarget2Percent float64 // Rest power
	Cadence             int
}

func (Steady) isSegment()   {}
func (Ramp) isSegment()     {}
func (Interval) isSegment() {}

func (s Steady) Kind() Kind { return KindSteady }

func (r Ramp) Kind() Kind {
	if r.Direction == RampCooldown {
		return KindCooldown
	}
	return KindWarmup
}

func (i Interval) Kind() Kind { return KindInterval }

func (s Steady) DurationSeconds() int { return s.Duration }
func (r Ramp) DurationSeconds() int   { return r.Duration }

// DurationSeconds is always derived from the repetition structure
func (i Interval) DurationSeconds() int {
	return i.Repetitions * (i.OnDuration + i.OffDuration)
}

func (s Steady) CadenceRPM() int   { return s.Cadence }
func (r Ramp) CadenceRPM() int     { return r.Cadence }
func (i Interval) CadenceRPM() int { return i.Cadence }

// OnSeconds returns the total work time across all repetitions
func (i Interval) OnSeconds() int { return i.OnDuration * i.Repetitions }

// OffSeconds returns the total rest time across all repetitions
func (i Interval) OffSeconds() int { return i.OffDuration * i.Repetitions }

func (s Steady) Validate() error {
	if s.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be greater than zero"}
	}
	if err := CheckLimits(s); err != nil {
		return err
	}
	if s.PowerPercent < 0 {
		return &ValidationError{Field: "powerPercent", Reason: "must not be negative"}
	}
	return validateCadence(s.Cadence)
}

func (r Ramp) Validate() error {
	if r.Direction != RampWarmup && r.Direction != RampCooldown {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown ramp direction %d", r.Direction)}
	}
	if r.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be greater than zero"}
	}
	if err := CheckLimits(r); err != nil {
		return err
	}
	if r.StartPowerPercent < 0 {
		return &ValidationError{Field: "startPowerPercent", Reason: "must not be negative"}
	}
	if r.EndPowerPercent < 0 {
		return &ValidationError{Field: "endPowerPercent", Reason: "must not be negative"}
	}
	return validateCadence(r.Cadence)
}

func (i Interval) Validate() error {
	if i.Repetitions < 1 {
		return &ValidationError{Field: "repetitions", Reason: "must be at least 1"}
	}
	if i.OnDuration <= 0 {
		return &ValidationError{Field: "onDuration", Reason: "must be greater than zero"}
	}
	if i.OffDuration <= 0 {
		return &ValidationError{Field: "offDuration", Reason: "must be greater than zero"}
	}
	if err := CheckLimits(i); err != nil {
		return err
	}
	if i.PowerTarget1Percent < 0 {
		return &ValidationError{Field: "powerTarget1Percent", Reason: "must not be negative"}
	}
	if i.PowerTarget2Percent < 0 {
		return &ValidationError{Field: "powerTarget2Percent", Reason: "must not be negative"}
	}
	return validateCadence(i.Cadence)
}

// CheckLimits rejects negative durations and repetition counts and segments
// longer than MaxDurationSeconds. Zero values pass: they describe an empty
// segment, which the metrics treat as contributing nothing.
func CheckLimits(seg Segment) error {
	switch s := seg.(type) {
	case Steady:
		return checkSeconds("duration", s.Duration)
	case Ramp:
		return checkSeconds("duration", s.Duration)
	case Interval:
		if s.Repetitions < 0 {
			return &ValidationError{Field: "repetitions", Reason: "must not be negative"}
		}
		if s.Repetitions > MaxRepetitions {
			return &ValidationError{Field: "repetitions", Reason: fmt.Sprintf("must be at most %d", MaxRepetitions)}
		}
		if err := checkSeconds("onDuration", s.OnDuration); err != nil {
			return err
		}
		if err := checkSeconds("offDuration", s.OffDuration); err != nil {
			return err
		}
		return checkSeconds("duration", s.DurationSeconds())
	case nil:
		return &ValidationError{Field: "segment", Reason: "missing segment"}
	}
	return nil
}

func checkSeconds(field string, seconds int) error {
	if seconds < 0 {
		return &ValidationError{Field: field, Reason: "must not be negative"}
	}
	if seconds > MaxDurationSeconds {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d seconds", MaxDurationSeconds)}
	}
	return nil
}

func validateCadence(cadence int) error {
	if cadence < 0 {
		return &ValidationError{Field: "cadence", Reason: "must be greater than zero when set"}
	}
	return nil
}

// Describe renders a one-line human readable summary of the segment
func Describe(seg Segment) string {
	var text string
	switch s := seg.(type) {
	case Steady:
		text = fmt.Sprintf("Steady - %s at %g%% FTP", FormatDuration(s.Duration), s.PowerPercent)
	case Ramp:
		name := "Warmup"
		if s.Direction == RampCooldown {
			name = "Cooldown"
		}
		text = fmt.Sprintf("%s - %s at %g%% → %g%% FTP", name, FormatDuration(s.Duration), s.StartPowerPercent, s.EndPowerPercent)
	case Interval:
		text = fmt.Sprintf("Interval - %dx (%s @ %g%% / %s @ %g%%)",
			s.Repetitions, FormatDuration(s.OnDuration), s.PowerTarget1Percent, FormatDuration(s.OffDuration), s.PowerTarget2Percent)
	default:
		return fmt.Sprintf("unknown segment %T", seg)
	}
	if c := seg.CadenceRPM(); c > 0 {
		text += fmt.Sprintf(" @ %d RPM", c)
	}
	return text
}

// FormatDuration formats seconds for display
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case secs > 0 && minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	case secs > 0:
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%d min", minutes)
}
