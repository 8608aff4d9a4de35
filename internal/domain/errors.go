package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidLevel is returned when a CEFR level is not one of A1-C2.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrInvalidCategory is returned when a job category is not recognized.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidJobStatus is returned when a job status is not one of the
	// defined lifecycle states.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrLevelRequired is returned when a generation job is created without
	// a CEFR level.
	ErrLevelRequired = errors.New("level is required for this category")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
