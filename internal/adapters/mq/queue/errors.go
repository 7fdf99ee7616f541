package queue

import "errors"

var (
	// ErrQueueFull is returned when every slot is taken.
	ErrQueueFull = errors.New("queue full")
	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("queue closed")
)
