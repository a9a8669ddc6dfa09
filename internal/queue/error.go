package queue

import "github.com/juju/errors"

var (
	ErrQueueFull      = errors.New("queue full")
	ErrQueueEmpty     = errors.New("queue empty")
	ErrAlreadyServing = errors.New("already serving")
	ErrTokenOverflow  = errors.New("token overflow")
)
