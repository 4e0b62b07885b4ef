package allowlistinfra

import (
	"context"
	"sync"

	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist"
)

type InMemoryAllowListRepository struct {
	mu      sync.RWMutex
	entries map[string]allowlist.Entry
}

func NewInMemoryAllowListRepository() *InMemoryAllowListRepository {
	return &InMemoryAllowListRepository{entries: make(map[string]allowlist.Entry)}
}

func (r *InMemoryAllowListRepository) Exists(_ context.Context, subjectID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[subjectID]
	return ok, nil
}

func (r *InMemoryAllowListRepository) InsertIfAbsent(_ context.Context, e allowlist.Entry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[e.SubjectID]; ok {
		return false, nil
	}
	r.entries[e.SubjectID] = e
	return true, nil
}

func (r *InMemoryAllowListRepository) FindBySubjectID(_ context.Context, subjectID string) (*allowlist.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[subjectID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}
