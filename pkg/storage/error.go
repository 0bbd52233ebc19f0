package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NotFoundError is returned when a record doesn't exist in the store.
type NotFoundError struct {
	ID uuid.UUID
}

func (e NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return "record not found"
	}

	return "record not found: " + e.ID.String()
}

// DuplicateRecordError is returned when another live record already has the
// same tag set. Retrying without changing the tags fails again.
type DuplicateRecordError struct {
	Tags []string
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("a record with tags [%s] already exists", strings.Join(e.Tags, " "))
}

// ConstraintViolationError is returned for integrity failures other than a
// duplicate tag set.
type ConstraintViolationError struct {
	Constraint string
	Err        error
}

func (e *ConstraintViolationError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("constraint violation: %v", e.Err)
	}
	return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintViolationError) Unwrap() error { return e.Err }

// ConnectionError is returned when the storage engine is unreachable or a
// connection could not be obtained in time. It is safe to retry with backoff.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("storage connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Error is any other failure reported by the storage engine.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient connection failure.
func IsRetryable(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// EngineErrorKind is the closed set of engine failure classes drivers sort
// their native errors into.
type EngineErrorKind int

const (
	// EngineUnknown is any failure not covered by another kind.
	EngineUnknown EngineErrorKind = iota

	// EngineUniqueViolation is a unique constraint or index rejecting a row.
	EngineUniqueViolation

	// EngineConstraintViolation is any other integrity constraint failure.
	EngineConstraintViolation

	// EngineConnection is a failure to reach the engine or obtain a connection.
	EngineConnection
)

func (k EngineErrorKind) String() string {
	switch k {
	case EngineUniqueViolation:
		return "unique_violation"
	case EngineConstraintViolation:
		return "constraint_violation"
	case EngineConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// EngineError is a driver's classification of a native engine error.
type EngineError struct {
	Kind EngineErrorKind

	// Constraint names the violated constraint or column, when known.
	Constraint string

	// Code is the engine's own error code, kept for logging.
	Code string

	Err error
}

// TagSetConstraint is the name of the unique constraint on normalized tags.
const TagSetConstraint = "records_normalized_tags_key"

// Translate maps a classified engine error into the storage taxonomy. op
// names the failed operation and tags is the tag set being written, if any.
// A unique violation is a duplicate record only when it comes from the tag
// set constraint; any other unique violation is a ConstraintViolationError.
func Translate(op string, e EngineError, tags []string) error {
	switch e.Kind {
	case EngineUniqueViolation:
		if isTagSetConstraint(e.Constraint) {
			return &DuplicateRecordError{Tags: tags}
		}
		return &ConstraintViolationError{Constraint: e.Constraint, Err: e.Err}
	case EngineConstraintViolation:
		return &ConstraintViolationError{Constraint: e.Constraint, Err: e.Err}
	case EngineConnection:
		return &ConnectionError{Err: e.Err}
	default:
		return &Error{Op: op, Err: e.Err}
	}
}

func isTagSetConstraint(name string) bool {
	return name == TagSetConstraint || strings.HasSuffix(name, "normalized_tags")
}
