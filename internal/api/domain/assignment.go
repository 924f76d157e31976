package domain

import (
	"errors"
	"fmt"
)

// Assignment lifecycle statuses. The transition is one-directional:
// pending -> completed, terminal at completed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

var (
	// ErrAssignmentNotFound is returned when an assignment id does not resolve
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// DuplicateKeyError reports a uniqueness violation at persistence time,
// naming the conflicting field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for field %q", e.Field)
}
