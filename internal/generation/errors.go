package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when exam generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate exam content")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTimeout is returned when a provider call exceeds its hard ceiling
	ErrTimeout = errors.New("provider call exceeded time limit")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
