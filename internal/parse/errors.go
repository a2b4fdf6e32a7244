package parse

import (
	"errors"
	"fmt"
)

// ErrMissingType is returned for records without a "type" field.
var ErrMissingType = errors.New("missing type field")

// LineError is a malformed line in a log file.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
