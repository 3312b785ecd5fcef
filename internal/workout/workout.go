package workout

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Workout is an ordered list of segments plus metadata. Values are treated as
// immutable: every edit method returns a new Workout and leaves the receiver,
// including its segment slice, untouched.
type Workout struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Segments    Segments `json:"segments"`
}

// New creates an empty workout with a freshly generated id
func New(name, description string) Workout {
	return Workout{
		ID:          NewID(),
		Name:        name,
		Description: description,
		Segments:    Segments{},
	}
}

// NewID returns a new unique workout identifier
func NewID() string {
	return uuid.NewString()
}

// TotalDuration returns the summed duration of all segments in seconds
func (w Workout) TotalDuration() int {
	total := 0
	for _, seg := range w.Segments {
		total += seg.DurationSeconds()
	}
	return total
}

// Append returns a copy of w with seg added at the end of the timeline
func (w Workout) Append(seg Segment) Workout {
	segments := make(Segments, 0, len(w.Segments)+1)
	segments = append(segments, w.Segments...)
	segments = append(segments, seg)
	return w.withSegments(segments)
}

// Remove returns a copy of w without the segment at index
func (w Workout) Remove(index int) (Workout, error) {
	if err := w.checkIndex(index); err != nil {
		return Workout{}, err
	}
	segments := make(Segments, 0, len(w.Segments)-1)
	segments = append(segments, w.Segments[:index]...)
	segments = append(segments, w.Segments[index+1:]...)
	return w.withSegments(segments), nil
}

// Update returns a copy of w with the segment at index replaced
func (w Workout) Update(index int, seg Segment) (Workout, error) {
	if err := w.checkIndex(index); err != nil {
		return Workout{}, err
	}
	segments := w.Segments.clone()
	segments[index] = seg
	return w.withSegments(segments), nil
}

// Move returns a copy of w with the segment at from removed and reinserted at to
func (w Workout) Move(from, to int) (Workout, error) {
	if err := w.checkIndex(from); err != nil {
		return Workout{}, err
	}
	if err := w.checkIndex(to); err != nil {
		return Workout{}, err
	}
	segments := w.Segments.clone()
	moved := segments[from]
	segments = append(segments[:from], segments[from+1:]...)
	segments = append(segments[:to], append(Segments{moved}, segments[to:]...)...)
	return w.withSegments(segments), nil
}

// Clear returns a copy of w with no segments
func (w Workout) Clear() Workout {
	return w.withSegments(Segments{})
}

// Rename returns a copy of w with a new name
func (w Workout) Rename(name string) Workout {
	w.Segments = w.Segments.clone()
	w.Name = name
	return w
}

// Redescribe returns a copy of w with a new description
func (w Workout) Redescribe(description string) Workout {
	w.Segments = w.Segments.clone()
	w.Description = description
	return w
}

// WithID returns a copy of w carrying id
func (w Workout) WithID(id string) Workout {
	w.Segments = w.Segments.clone()
	w.ID = id
	return w
}

// Validate checks the workout is fit to be saved
func (w Workout) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return &ValidationError{Field: "name", Reason: "workout must have a name"}
	}
	for i, seg := range w.Segments {
		if seg == nil {
			return &ValidationError{Field: fmt.Sprintf("segments[%d]", i), Reason: "missing segment"}
		}
		if err := seg.Validate(); err != nil {
			return fmt.Errorf("segments[%d]: %w", i, err)
		}
	}
	return w.Segments.CheckLimits()
}

func (w Workout) withSegments(segments Segments) Workout {
	w.Segments = segments
	return w
}

func (w Workout) checkIndex(index int) error {
	if index < 0 || index >= len(w.Segments) {
		return fmt.Errorf("%w: %d (have %d segments)", ErrIndexOutOfRange, index, len(w.Segments))
	}
	return nil
}

// Segments is an ordered segment list with a tagged JSON representation
type Segments []Segment

// CheckLimits applies CheckLimits to every segment and bounds the summed
// duration by MaxDurationSeconds
func (s Segments) CheckLimits() error {
	total := 0
	for i, seg := range s {
		if err := CheckLimits(seg); err != nil {
			return fmt.Errorf("segments[%d]: %w", i, err)
		}
		total += seg.DurationSeconds()
	}
	if total > MaxDurationSeconds {
		return &ValidationError{Field: "segments", Reason: fmt.Sprintf("total duration must be at most %d seconds", MaxDurationSeconds)}
	}
	return nil
}

func (s Segments) clone() Segments {
	out := make(Segments, len(s))
	copy(out, s)
	return out
}
