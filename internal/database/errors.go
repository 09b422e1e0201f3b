package database

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyWaiting = errors.New("phone already has a waiting entry")
)
