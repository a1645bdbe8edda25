package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrStopped  = errors.New("queue stopped")
	ErrFull     = errors.New("queue full")
	ErrEmptyJob = errors.New("job has no application id")
)
