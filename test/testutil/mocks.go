package testutil

import (
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/TheMichaelB/scryptbridge/internal/crypto"
	"github.com/TheMichaelB/scryptbridge/internal/models"
)

// MockDeriver mocks crypto.Deriver.
type MockDeriver struct {
	mock.Mock
}

var _ crypto.Deriver = (*MockDeriver)(nil)

func NewMockDeriver() *MockDeriver {
	return &MockDeriver{}
}

func (m *MockDeriver) DeriveKey(password, salt []byte, n, r, p, dkLen int) ([]byte, error) {
	args := m.Called(password, salt, n, r, p, dkLen)

	if key := args.Get(0); key != nil {
		return key.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// OutcomeRecorder collects every outcome delivered to its Callback.
type OutcomeRecorder struct {
	mu       sync.Mutex
	outcomes []models.Outcome
	notify   chan struct{}
}

func NewOutcomeRecorder() *OutcomeRecorder {
	return &OutcomeRecorder{notify: make(chan struct{}, 1024)}
}

// Callback records o.
func (r *OutcomeRecorder) Callback(o models.Outcome) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Outcomes returns a copy of the recorded outcomes.
func (r *OutcomeRecorder) Outcomes() []models.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := make([]models.Outcome, len(r.outcomes))
	copy(cp, r.outcomes)
	return cp
}

// WaitFor blocks until n outcomes were recorded or timeout elapses, and
// reports whether the count was reached.
func (r *OutcomeRecorder) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if len(r.Outcomes()) >= n {
			return true
		}
		select {
		case <-r.notify:
		case <-deadline:
			return len(r.Outcomes()) >= n
		}
	}
}
