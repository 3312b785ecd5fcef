// Package zwo converts workouts to and from the ZWO workout file format: a
// <workout_file> document whose <workout> element lists one child per segment
// with powers written as fractions of FTP.
package zwo

import (
	"encoding/xml"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lowaak/smart-trainer/workout-builder/internal/workout"
)

const (
	// ContentType is the media type of an encoded workout file
	ContentType = "application/xml"
	// FileExtension is the conventional extension of a workout file
	FileExtension = ".zwo"

	DefaultExportName = "Untitled Workout"
	DefaultImportName = "Imported Workout"

	sportTypeBike = "bike"
)

// Element names
const (
	tagSteadyState = "SteadyState"
	tagIntervalsT  = "IntervalsT"
	tagWarmup      = "Warmup"
	tagCooldown    = "Cooldown"
)

// ParseError reports a document that is not a well formed workout file
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing workout file: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type workoutFile struct {
	XMLName     xml.Name
	Name        string      `xml:"name"`
	Description string      `xml:"description"`
	SportType   string      `xml:"sportType,omitempty"`
	Tags        string      `xml:"tags"`
	Workout     workoutBody `xml:"workout"`
}

type workoutBody struct {
	Steps []element `xml:",any"`
}

// element is one segment; attributes are kept raw so their names and values
// can be read leniently
type element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
}

// Encode renders w as a workout file. Cadence attributes are only written for
// segments that have a cadence target.
func Encode(w workout.Workout) ([]byte, error) {
	name := w.Name
	if name == "" {
		name = DefaultExportName
	}
	doc := workoutFile{
		XMLName:     xml.Name{Local: "workout_file"},
		Name:        name,
		Description: w.Description,
		SportType:   sportTypeBike,
	}
	for i, seg := range w.Segments {
		step, err := encodeSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("segments[%d]: %w", i, err)
		}
		doc.Workout.Steps = append(doc.Workout.Steps, step)
	}

	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding workout file: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func encodeSegment(seg workout.Segment) (element, error) {
	var step element
	switch s := seg.(type) {
	case workout.Steady:
		step = newElement(tagSteadyState,
			intAttr("Duration", s.Duration),
			powerAttr("Power", s.PowerPercent))
	case workout.Interval:
		step = newElement(tagIntervalsT,
			intAttr("Repeat", s.Repetitions),
			intAttr("OnDuration", s.OnDuration),
			intAttr("OffDuration", s.OffDuration),
			powerAttr("OnPower", s.PowerTarget1Percent),
			powerAttr("OffPower", s.PowerTarget2Percent))
	case workout.Ramp:
		tag := tagWarmup
		if s.Direction == workout.RampCooldown {
			tag = tagCooldown
		}
		step = newElement(tag,
			intAttr("Duration", s.Duration),
			powerAttr("PowerLow", s.StartPowerPercent),
			powerAttr("PowerHigh", s.EndPowerPercent))
	default:
		return element{}, fmt.Errorf("unsupported segment type %T", seg)
	}
	if cadence := seg.CadenceRPM(); cadence > 0 {
		step.Attrs = append(step.Attrs, intAttr("Cadence", cadence))
	}
	return step, nil
}

func newElement(tag string, attrs ...xml.Attr) element {
	return element{XMLName: xml.Name{Local: tag}, Attrs: attrs}
}

func intAttr(name string, v int) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: strconv.Itoa(v)}
}

func powerAttr(name string, percent float64) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: strconv.FormatFloat(percent/100, 'f', 2, 64)}
}

// Decode parses a workout file into a new workout with a fresh id. Segment
// element names are matched case-insensitively and unknown elements are
// skipped. Missing or unreadable numeric attributes read as 0. Powers are
// rounded to whole percents. Negative or oversized durations and repetition
// counts are a ParseError.
func Decode(data []byte) (workout.Workout, error) {
	var doc workoutFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return workout.Workout{}, &ParseError{Err: err}
	}
	if !strings.EqualFold(doc.XMLName.Local, "workout_file") {
		return workout.Workout{}, &ParseError{Err: fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)}
	}

	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = DefaultImportName
	}
	w := workout.New(name, strings.TrimSpace(doc.Description))

	for _, step := range doc.Workout.Steps {
		if seg, ok := decodeSegment(step); ok {
			w = w.Append(seg)
		}
	}
	if err := w.Segments.CheckLimits(); err != nil {
		return workout.Workout{}, &ParseError{Err: err}
	}
	return w, nil
}

func decodeSegment(step element) (workout.Segment, bool) {
	cadence := step.intAttr("Cadence")

	switch strings.ToLower(step.XMLName.Local) {
	case strings.ToLower(tagSteadyState):
		return workout.Steady{
			Duration:     step.intAttr("Duration"),
			PowerPercent: step.powerAttr("Power"),
			Cadence:      cadence,
		}, true

	case strings.ToLower(tagIntervalsT):
		return workout.Interval{
			Repetitions:         step.intAttr("Repeat"),
			OnDuration:          step.intAttr("OnDuration"),
			OffDuration:         step.intAttr("OffDuration"),
			PowerTarget1Percent: step.powerAttr("OnPower"),
			PowerTarget2Percent: step.powerAttr("OffPower"),
			Cadence:             cadence,
		}, true

	case strings.ToLower(tagWarmup), strings.ToLower(tagCooldown):
		direction := workout.RampWarmup
		if strings.EqualFold(step.XMLName.Local, tagCooldown) {
			direction = workout.RampCooldown
		}
		return workout.Ramp{
			Direction:         direction,
			Duration:          step.intAttr("Duration"),
			StartPowerPercent: step.powerAttr("PowerLow"),
			EndPowerPercent:   step.powerAttr("PowerHigh"),
			Cadence:           cadence,
		}, true
	}
	return nil, false
}

func (e element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

// intAttr reads a whole number, truncating a fractional value and clamping
// huge ones to the int32 range
func (e element) intAttr(name string) int {
	raw, ok := e.attr(name)
	if !ok {
		return 0
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) {
		return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, f)))
	}
	return 0
}

// powerAttr reads an FTP fraction and returns it as a whole percent
func (e element) powerAttr(name string) float64 {
	raw, ok := e.attr(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return math.Floor(f*100 + 0.5)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName derives a safe file name for an exported workout
func FileName(name string) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_.")
	if base == "" {
		base = "workout"
	}
	return base + FileExtension
}
