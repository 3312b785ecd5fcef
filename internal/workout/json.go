package workout

import (
	"encoding/json"
	"fmt"
)

// segmentJSON is the persisted shape of every segment kind
type segmentJSON struct {
	Type                Kind     `json:"type"`
	Duration            int      `json:"duration"`
	Cadence             int      `json:"cadence,omitempty"`
	PowerPercent        *float64 `json:"powerPercent,omitempty"`
	StartPowerPercent   *float64 `json:"startPowerPercent,omitempty"`
	EndPowerPercent     *float64 `json:"endPowerPercent,omitempty"`
	PowerTarget1Percent *float64 `json:"powerTarget1Percent,omitempty"`
	PowerTarget2Percent *float64 `json:"powerTarget2Percent,omitempty"`
	Repetitions         int      `json:"repetitions,omitempty"`
	OnDuration          int      `json:"onDuration,omitempty"`
	OffDuration         int      `json:"offDuration,omitempty"`
}

// MarshalJSON writes each segment as a tagged object
func (s Segments) MarshalJSON() ([]byte, error) {
	out := make([]segmentJSON, 0, len(s))
	for i, seg := range s {
		raw, err := toSegmentJSON(seg)
		if err != nil {
			return nil, fmt.Errorf("segments[%d]: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads tagged segment objects. The interval duration field is
// ignored since it is always derived from the repetition structure.
func (s *Segments) UnmarshalJSON(data []byte) error {
	var raw []segmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Segments, 0, len(raw))
	for i, r := range raw {
		seg, err := fromSegmentJSON(r)
		if err != nil {
			return fmt.Errorf("segments[%d]: %w", i, err)
		}
		out = append(out, seg)
	}
	*s = out
	return nil
}

func toSegmentJSON(seg Segment) (segmentJSON, error) {
	switch s := seg.(type) {
	case Steady:
		return segmentJSON{
			Type:         KindSteady,
			Duration:     s.Duration,
			Cadence:      s.Cadence,
			PowerPercent: ptr(s.PowerPercent),
		}, nil
	case Ramp:
		return segmentJSON{
			Type:              s.Kind(),
			Duration:          s.Duration,
			Cadence:           s.Cadence,
			StartPowerPercent: ptr(s.StartPowerPercent),
			EndPowerPercent:   ptr(s.EndPowerPercent),
		}, nil
	case Interval:
		return segmentJSON{
			Type:                KindInterval,
			Duration:            s.DurationSeconds(),
			Cadence:             s.Cadence,
			PowerTarget1Percent: ptr(s.PowerTarget1Percent),
			PowerTarget2Percent: ptr(s.PowerTarget2Percent),
			Repetitions:         s.Repetitions,
			OnDuration:          s.OnDuration,
			OffDuration:         s.OffDuration,
		}, nil
	}
	return segmentJSON{}, fmt.Errorf("unsupported segment type %T", seg)
}

func fromSegmentJSON(r segmentJSON) (Segment, error) {
	switch r.Type {
	case KindSteady:
		return Steady{Duration: r.Duration, PowerPercent: deref(r.PowerPercent), Cadence: r.Cadence}, nil
	case KindWarmup, KindCooldown:
		direction := RampWarmup
		if r.Type == KindCooldown {
			direction = RampCooldown
		}
		return Ramp{
			Direction:         direction,
			Duration:          r.Duration,
			StartPowerPercent: deref(r.StartPowerPercent),
			EndPowerPercent:   deref(r.EndPowerPercent),
			Cadence:           r.Cadence,
		}, nil
	case KindInterval:
		return Interval{
			Repetitions:         r.Repetitions,
			OnDuration:          r.OnDuration,
			OffDuration:         r.OffDuration,
			PowerTarget1Percent: deref(r.PowerTarget1Percent),
			PowerTarget2Percent: deref(r.PowerTarget2Percent),
			Cadence:             r.Cadence,
		}, nil
	}
	return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown segment type %q", r.Type)}
}

func ptr(v float64) *float64 { return &v }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
