package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goethe-exam/exam-api/internal/domain"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	t.Run("accepts all known categories", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"read", "write_generation", "write_evaluation", "listen"} {
			category, err := domain.ParseCategory(input)
			require.NoError(t, err, "category %q should parse", input)
			assert.Equal(t, input, category.String())
		}
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		t.Parallel()

		for _, input := range []string{"", "write", "READ", "speaking"} {
			_, err := domain.ParseCategory(input)
			assert.ErrorIs(t, err, domain.ErrInvalidCategory, "category %q should be rejected", input)
		}
	})
}

func TestCategoryRequiresLevel(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.CategoryRead.RequiresLevel())
	assert.True(t, domain.CategoryWriteGeneration.RequiresLevel())
	assert.True(t, domain.CategoryListen.RequiresLevel())

	// Evaluation reuses the level stored at generation time.
	assert.False(t, domain.CategoryWriteEvaluation.RequiresLevel())
}

func TestJobStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, domain.JobStatusNotStarted.IsTerminal())
	assert.False(t, domain.JobStatusInProgress.IsTerminal())
	assert.True(t, domain.JobStatusDone.IsTerminal())
	assert.True(t, domain.JobStatusFailed.IsTerminal())
}

func TestNewExamJob(t *testing.T) {
	t.Parallel()

	t.Run("creates a not_started job", func(t *testing.T) {
		t.Parallel()

		queueID := uuid.New()
		job, err := domain.NewExamJob(queueID, domain.CategoryRead)
		require.NoError(t, err)

		assert.Equal(t, queueID, job.QueueID)
		assert.Equal(t, domain.CategoryRead, job.Category)
		assert.Equal(t, domain.JobStatusNotStarted, job.Status)
		assert.False(t, job.CreatedAt.IsZero())
		assert.False(t, job.UpdatedAt.IsZero())
	})

	t.Run("rejects nil queue ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewExamJob(uuid.Nil, domain.CategoryRead)
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("rejects invalid category", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewExamJob(uuid.New(), domain.Category("speaking"))
		assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	})
}
