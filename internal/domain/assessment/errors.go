package assessment

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidInput = errors.New("invalid input")
)

// InputError reports a snapshot field outside its declared domain.
type InputError struct {
	Field  string
	Value  any
	Reason string
}

func newInputError(field string, value any, reason string) *InputError {
	return &InputError{Field: field, Value: value, Reason: reason}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s=%#v: %s", ErrInvalidInput, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
