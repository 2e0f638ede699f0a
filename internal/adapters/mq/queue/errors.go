package queue

import "errors"

// Sentinel errors for enqueue failures.
var (
	ErrQueueFull   = errors.New("update queue is full")
	ErrQueueClosed = errors.New("update queue is closed")
)
