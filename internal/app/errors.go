package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrQueueFull    = errors.New("race queue is full")
	ErrRaceNotFound = errors.New("race not found")
)
