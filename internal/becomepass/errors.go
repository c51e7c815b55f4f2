package becomepass

import (
	"errors"
	"fmt"
)

var (
	ErrOutputTooLarge = errors.New("command output exceeds size limit")
	ErrInvalidOutput  = errors.New("command output is not valid UTF-8")
)

// ResolutionError reports a configured command that could not be run or did
// not exit cleanly. It always aborts the whole lookup.
type ResolutionError struct {
	Command string
	Entity  string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("error running %v for %v: %v", e.Command, e.Entity, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
