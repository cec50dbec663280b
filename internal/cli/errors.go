package cli

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrUsage          = errors.New("usage")
	ErrUnreadableFile = errors.New("unreadable file")
)

// Exit codes returned by ExitCode.
const (
	ExitOK           = 0
	ExitInvalidInput = 1
	ExitUsage        = 2
)

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// ExitCode maps an error returned by Run to a process exit code. Invalid
// answers, unreadable files and evaluation failures all exit 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitInvalidInput
	}
}
