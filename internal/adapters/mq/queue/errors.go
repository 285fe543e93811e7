package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed = errors.New("generation queue closed")
	ErrFull   = errors.New("generation queue full")
)
