package service

import "errors"

var (
	ErrQueueEmpty = errors.New("no waiting entries")

	// errClaimed: another cycle is already notifying the entry.
	errClaimed = errors.New("notification already claimed")
)
