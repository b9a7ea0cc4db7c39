package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed = errors.New("upload queue closed")
	ErrFull   = errors.New("upload queue full")
)
