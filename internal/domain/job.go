package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category identifies the kind of work an exam job performs.
type Category string

// The closed set of job categories.
const (
	CategoryRead            Category = "read"
	CategoryWriteGeneration Category = "write_generation"
	CategoryWriteEvaluation Category = "write_evaluation"
	CategoryListen          Category = "listen"
)

// IsValid reports whether the category is one of the defined job categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRead, CategoryWriteGeneration, CategoryWriteEvaluation, CategoryListen:
		return true
	}
	return false
}

// RequiresLevel reports whether jobs of this category need a CEFR level at
// creation time. Evaluation reuses the level stored with the existing exam
// record, so it is the only category that does not.
func (c Category) RequiresLevel() bool {
	return c != CategoryWriteEvaluation
}

// String returns the category as a string.
func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a string into a Category.
// Returns ErrInvalidCategory if the string is not a valid category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// JobStatus represents the lifecycle state of an exam job.
type JobStatus string

// Job lifecycle states. A job moves not_started -> in_progress -> done or
// failed. Terminal states are final; no transition leaves them.
const (
	JobStatusNotStarted JobStatus = "not_started"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// IsValid reports whether the status is one of the defined lifecycle states.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusNotStarted, JobStatusInProgress, JobStatusDone, JobStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status is final.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// ExamJob represents one unit of asynchronous exam work. The internal ID is
// assigned by the database at insert and is used for claim ordering and row
// locking; QueueID is the only handle clients ever see.
type ExamJob struct {
	ID           int64     `json:"id"`
	QueueID      uuid.UUID `json:"queue_id"`
	Category     Category  `json:"category"`
	Status       JobStatus `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewExamJob creates a new ExamJob in the not_started state for the given
// queue ID and category. Returns an error if validation fails.
func NewExamJob(queueID uuid.UUID, category Category) (*ExamJob, error) {
	job := &ExamJob{
		QueueID:   queueID,
		Category:  category,
		Status:    JobStatusNotStarted,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the ExamJob has valid data.
func (j *ExamJob) Validate() error {
	if j.QueueID == uuid.Nil {
		return fmt.Errorf("%w: queue ID cannot be empty", ErrInvalidID)
	}

	if !j.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, j.Category)
	}

	if !j.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidJobStatus, j.Status)
	}

	return nil
}
