package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrEmptyPayload = errors.New("empty upload")
	ErrBusy         = errors.New("upload queue is full")
	ErrNoData       = errors.New("no qualifying records")
)
