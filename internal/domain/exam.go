package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateExamKey checks the common creation invariants for an exam record:
// every record carries a non-nil queue ID and a valid CEFR level. The record
// contents themselves (payload, answers, evaluation) are opaque JSON and are
// not validated here.
func ValidateExamKey(queueID uuid.UUID, level Level) error {
	if queueID == uuid.Nil {
		return fmt.Errorf("%w: queue ID cannot be empty", ErrInvalidID)
	}

	if !level.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	return nil
}
