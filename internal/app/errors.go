package service

import "errors"

// Sentinel error kinds for this package.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrEmptyBatch    = errors.New("batch must contain at least one snapshot")
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)
