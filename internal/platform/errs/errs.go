// Package errs defines the typed failure taxonomy shared by the worklist,
// report and terminology stores. Handlers map each type to an HTTP status;
// services return them so callers can distinguish their own mistakes
// (validation, uniqueness) from infrastructure faults (storage).
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed caller-supplied field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// UniquenessError reports a write that would collide with an existing row
// scoped to the same owner. ConflictID names the existing entity when known.
type UniquenessError struct {
	Field      string
	Value      string
	ConflictID string
}

func (e *UniquenessError) Error() string {
	if e.ConflictID != "" {
		return fmt.Sprintf("uniqueness: %s=%q already used by %s", e.Field, e.Value, e.ConflictID)
	}
	return fmt.Sprintf("uniqueness: %s=%q already in use", e.Field, e.Value)
}

// NotFoundError reports an update or delete addressed at an entity that does
// not exist. Plain lookups return (nil, nil) instead; absence is a normal
// outcome for reads.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NotFound builds a NotFoundError.
func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// DimensionError reports a query vector whose length does not match the
// configured embedding dimensionality. Vectors are never truncated or padded.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// TransitionError reports a report status transition missing a precondition,
// e.g. signing without a signer identity.
type TransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("transition %s -> %s", e.From, e.To)
	}
	return fmt.Sprintf("transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// StorageError wraps a persistence-layer fault. It is the only class a
// caller may retry with backoff; nothing in this module retries internally.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage unavailable: %v", e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError. Returns nil for a nil err.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUniqueness reports whether err is (or wraps) a UniquenessError.
func IsUniqueness(err error) bool {
	var u *UniquenessError
	return errors.As(err, &u)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}
