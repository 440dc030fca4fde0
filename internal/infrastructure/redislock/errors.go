package redislock

import "errors"

var (
	// ErrDisabled indicates redis is disabled in configuration.
	ErrDisabled = errors.New("redislock: disabled in configuration")

	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("redislock: connection failed")

	// ErrBusy is returned when a lock is still held by another owner after
	// the configured wait.
	ErrBusy = errors.New("redislock: lock busy")

	// ErrNotHeld is returned by Release when the lock expired or changed owner.
	ErrNotHeld = errors.New("redislock: lock not held")
)
