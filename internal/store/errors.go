package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Note that for exam payload reads "no such row" and "row exists
	// but the payload has not been generated yet" are deliberately the same
	// error; see ErrNotReady.
	ErrNotFound = errors.New("entity not found")

	// ErrNotReady is returned when an exam record exists but the requested
	// column (payload or evaluation) is still null. Callers treat it the
	// same as ErrNotFound; it wraps ErrNotFound so errors.Is works both ways.
	ErrNotReady = fmt.Errorf("%w: result not ready", ErrNotFound)

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., two exam records with the same queue ID).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation matches no row,
	// for example because the queue ID is unknown.
	ErrUpdateFailed = errors.New("update failed")

	// ErrNoJobs is returned by ClaimNext when no not_started job exists.
	// It is an expected condition, not a failure.
	ErrNoJobs = errors.New("no jobs available")

	// ErrInconsistentJob is returned when a claimed job has no matching exam
	// record. This is a fatal consistency error: the worker invocation that
	// observes it must abort loudly rather than process the job.
	ErrInconsistentJob = errors.New("job has no matching exam record")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrJobNotFound indicates that the requested exam job does not exist.
	ErrJobNotFound = fmt.Errorf("%w: exam job", ErrNotFound)

	// ErrExamNotFound indicates that the requested exam record does not exist.
	ErrExamNotFound = fmt.Errorf("%w: exam record", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error,
// including the not-ready case.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "exam_job", "write_exam")
	Operation string // The operation that failed (e.g., "enqueue", "claim")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
