package workout

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by edit operations given an index outside the segment list
var ErrIndexOutOfRange = errors.New("segment index out of range")

// ValidationError reports a workout or segment field that was rejected before
// reaching the metrics engine
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
