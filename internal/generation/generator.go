package generation

import (
	"context"
	"encoding/json"

	"github.com/goethe-exam/exam-api/internal/domain"
)

// ExamGenerator defines the interface for producing and grading exam content.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
//
// Both calls block until the provider responds; callers bound them with a
// context deadline. A deadline expiry is a failure, never a retry.
type ExamGenerator interface {
	// GenerateExam creates exam content for the given category and CEFR
	// level and returns it as a JSON document. The category must be a
	// generation category (read, write_generation, listen).
	GenerateExam(ctx context.Context, category domain.Category, level domain.Level) (json.RawMessage, error)

	// EvaluateWriting grades a participant's writing submission against the
	// generated exam and returns the evaluation document. The document
	// contains a numeric "score" field when grading succeeded.
	EvaluateWriting(ctx context.Context, payload, answers json.RawMessage) (json.RawMessage, error)
}
