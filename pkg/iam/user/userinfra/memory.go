package userinfra

import (
	"context"
	"sync"

	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
)

// InMemoryUserRepository is a mutex-guarded user.Repository for tests and
// single-process deployments without a database.
type InMemoryUserRepository struct {
	mu        sync.RWMutex
	nextID    kernel.UserID
	byID      map[kernel.UserID]*user.User
	bySubject map[string]kernel.UserID
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:      make(map[kernel.UserID]*user.User),
		bySubject: make(map[string]kernel.UserID),
	}
}

func (r *InMemoryUserRepository) FindByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound().WithDetail("user_id", id.String())
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryUserRepository) FindBySubjectID(_ context.Context, subjectID string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySubject[subjectID]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *InMemoryUserRepository) Upsert(_ context.Context, u user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.bySubject[u.SubjectID]; ok {
		existing := r.byID[id]
		existing.FederatedID = u.FederatedID
		existing.DisplayName = u.DisplayName
		existing.AvatarURL = u.AvatarURL
		existing.UpdatedAt = u.UpdatedAt
		cp := *existing
		return &cp, nil
	}

	r.nextID++
	u.ID = r.nextID
	stored := u
	r.byID[u.ID] = &stored
	r.bySubject[u.SubjectID] = u.ID
	return &u, nil
}
