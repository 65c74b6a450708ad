package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrCalculation is returned when the calculation engine fails or returns
// a result the adapter cannot make sense of. It is session-fatal.
var ErrCalculation = errors.New("calculation failed")

// ValidationError describes a rejected user input. It is recovered locally:
// the dialog re-prompts the same phase and no session field is mutated.
type ValidationError struct {
	Field  string // "birth_date", "gender", "action", "section_index"
	Input  string // the raw input that was rejected
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
}

// AsValidation unwraps err into a *ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
