package evaluation

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrInternal = errors.New("internal evaluation error")
)

// InternalError reports a violated evaluation invariant. It indicates a
// defect in the rule base, never a problem with the input.
type InternalError struct {
	Invariant string
	Detail    string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInternal, e.Invariant, e.Detail)
}

// Unwrap lets errors.Is(err, ErrInternal) match.
func (e *InternalError) Unwrap() error {
	return ErrInternal
}
