package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a record changed between read and write.
var ErrConflict = errors.New("record modified concurrently")

// NotFoundError reports an update or lookup on an absent id.
type NotFoundError struct {
	Collection string
	ID         int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// WriteError reports a record that violates a declared field constraint.
type WriteError struct {
	Collection string
	Field      string
	Reason     string
}

func (e *WriteError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("write %s: %s", e.Collection, e.Reason)
	}
	return fmt.Sprintf("write %s: %s %s", e.Collection, e.Field, e.Reason)
}

// IsWriteError reports whether err wraps a *WriteError.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
