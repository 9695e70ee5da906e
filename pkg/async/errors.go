package async

import "errors"

var (
	// ErrTimeout is returned when a future does not complete within the allowed time.
	ErrTimeout = errors.New("async: operation timed out waiting for future completion")
)
