package worker

import "errors"

// Sentinel error kinds for this package.
var (
	ErrPoolNotStarted = errors.New("worker pool not started")
	ErrPoolStopped    = errors.New("worker pool stopped")
)
