package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStateManager keeps OAuth states in process memory. Only suitable
// for a single instance.
type InMemoryStateManager struct {
	mu     sync.Mutex
	states map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

func NewInMemoryStateManager(ttl time.Duration) *InMemoryStateManager {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InMemoryStateManager{
		states: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *InMemoryStateManager) GenerateState() string {
	return uuid.NewString()
}

func (m *InMemoryStateManager) StoreState(_ context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for s, exp := range m.states {
		if now.After(exp) {
			delete(m.states, s)
		}
	}
	m.states[state] = now.Add(m.ttl)
	return nil
}

// ValidateState reports whether state was issued and is unexpired. A state
// validates at most once.
func (m *InMemoryStateManager) ValidateState(_ context.Context, state string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.states[state]
	if !ok {
		return false
	}
	delete(m.states, state)
	return !m.now().After(exp)
}
