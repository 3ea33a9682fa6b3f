package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

func TestResult_CompleteOnce(t *testing.T) {
	var delivered []models.Outcome
	r := newResult("task-1", func(o models.Outcome) {
		delivered = append(delivered, o)
	})

	assert.Equal(t, StatePending, r.State())
	_, ok := r.Outcome()
	assert.False(t, ok)

	require.True(t, r.start())
	assert.False(t, r.start())
	assert.Equal(t, StateRunning, r.State())

	require.NoError(t, r.complete(models.Success("00ff")))
	assert.ErrorIs(t, r.complete(models.Failure("late")), ErrAlreadyCompleted)

	assert.Equal(t, StateCompleted, r.State())
	assert.Equal(t, []models.Outcome{models.Success("00ff")}, delivered)

	outcome, ok := r.Outcome()
	require.True(t, ok)
	assert.Equal(t, "00ff", outcome.Hex)
}

func TestResult_Wait(t *testing.T) {
	r := newResult("task-2", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		_ = r.complete(models.Failure("DerivationError: boom"))
	}()

	outcome, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.False(t, outcome.OK)
	assert.Equal(t, "DerivationError: boom", outcome.Message)

	select {
	case <-r.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "unknown", State(42).String())
}
