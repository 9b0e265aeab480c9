package request

import (
	"errors"
	"fmt"
)

// ValidationError is the single failure kind the workflow engine produces:
// a deterministic rejection of invalid input, carrying a message the command
// layer shows to the user verbatim. There are no retryable or transient
// failure classes in this engine.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// invalidf builds a ValidationError with a formatted user-facing message.
func invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a workflow validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
