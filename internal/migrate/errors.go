package migrate

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeViolation is wrapped by every ShapeError. A document failing a
	// post-migration invariant must not be used.
	ErrShapeViolation = errors.New("shape violation")

	// ErrInvalidCatalog reports a catalog that cannot be ordered, such as one
	// declaring the same version twice.
	ErrInvalidCatalog = errors.New("invalid migration catalog")
)

// ShapeError describes the member that broke an invariant.
type ShapeError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape violation: %s = %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ShapeError) Unwrap() error { return ErrShapeViolation }

// StepError wraps a failure returned by a single migration step.
type StepError struct {
	Entity  string
	Version string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed to apply %s migration %s: %v", e.Entity, e.Version, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
