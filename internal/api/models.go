package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/domain"
)

// JobDispatcher defines the dispatcher operations the handlers need.
// Implemented by dispatch.Dispatcher.
type JobDispatcher interface {
	// RequestJob creates a generation job and returns its queue ID.
	RequestJob(ctx context.Context, category domain.Category, level domain.Level) (uuid.UUID, error)

	// RequestEvaluation stores a writing participant's answers and creates
	// an evaluation job reusing the same queue ID.
	RequestEvaluation(ctx context.Context, queueID uuid.UUID, answers json.RawMessage) error
}

// JobStartedResponse is the response for a successfully requested job.
type JobStartedResponse struct {
	Message string `json:"message"`
	QueueID string `json:"queue_id"`
}

// PayloadResponse wraps a generated exam payload or evaluation document.
type PayloadResponse struct {
	Payload json.RawMessage `json:"payload"`
}

// JobsResponse is the response for the administrative job listing.
type JobsResponse struct {
	Jobs []*domain.ExamJob `json:"jobs"`
}

// ParticipantResultsRequest is the PATCH body for submitting a participant's
// answers together with an externally computed grading outcome (used for the
// read and listen categories, which are graded client-side).
type ParticipantResultsRequest struct {
	ParticipantAnswers json.RawMessage `json:"participant_answers"`
	Score              *float64        `json:"score"`
	IsPass             *bool           `json:"is_pass"`
}

// Validate checks field presence and shape, mirroring the API contract:
// participant_answers must be a JSON array, score a number, is_pass a boolean.
func (req *ParticipantResultsRequest) Validate() error {
	if req.ParticipantAnswers == nil {
		return errors.New("Missing required field: participant_answers")
	}
	if !isJSONArray(req.ParticipantAnswers) {
		return errors.New("participant_answers must be an array")
	}
	if req.Score == nil {
		return errors.New("Missing required field: score")
	}
	if req.IsPass == nil {
		return errors.New("Missing required field: is_pass")
	}
	return nil
}

// ParticipantResultsResponse echoes a successful results submission.
type ParticipantResultsResponse struct {
	Message string  `json:"message"`
	QueueID string  `json:"queue_id"`
	Score   float64 `json:"score"`
	IsPass  bool    `json:"is_pass"`
}

// EvaluationRequest is the PUT body that starts a write evaluation.
type EvaluationRequest struct {
	ParticipantAnswers json.RawMessage `json:"participant_answers"`
}

// Validate checks that answers were submitted.
func (req *EvaluationRequest) Validate() error {
	if len(req.ParticipantAnswers) == 0 || bytes.Equal(bytes.TrimSpace(req.ParticipantAnswers), []byte("null")) {
		return errors.New("Missing required field: participant_answers")
	}
	return nil
}

// isJSONArray reports whether the raw value is a JSON array.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// decodeErrorMessage turns a JSON decode error into the message the API
// contract promises for mistyped fields.
func decodeErrorMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch typeErr.Field {
		case "score":
			return "score must be a number"
		case "is_pass":
			return "is_pass must be a boolean"
		}
		return fmt.Sprintf("Invalid type for field: %s", typeErr.Field)
	}
	return "Invalid JSON in request body"
}
