package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by adapters when a row lookup misses.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is wrapped by adapters when a unique or check constraint
// rejects a write (duplicate alliance pair, duplicate order id, etc).
var ErrConflict = errors.New("store: conflict")

// NotFoundError reports which entity and key were missing.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("store: %s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports which constraint a write violated.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: %s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// TransientError wraps a connectivity or lock-contention failure the
// orchestrator may retry once per phase.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("store: transient failure during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
