package smoke

import "errors"

// Sentinel kinds for smoke failures.
var (
	ErrInvalidConfig    = errors.New("invalid smoke config")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMismatch         = errors.New("response mismatch")
)
