package invitationinfra

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/iam/invitation"
)

// InMemoryInvitationRepository serializes every claim behind one mutex.
type InMemoryInvitationRepository struct {
	mu    sync.Mutex
	codes map[string]*invitation.InviteCode
}

func NewInMemoryInvitationRepository() *InMemoryInvitationRepository {
	return &InMemoryInvitationRepository{codes: make(map[string]*invitation.InviteCode)}
}

func (r *InMemoryInvitationRepository) FindByCode(_ context.Context, code string) (*invitation.InviteCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.codes[code]
	if !ok {
		return nil, invitation.ErrInvalidOrUsedCode()
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryInvitationRepository) ExistsUnused(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.codes[code]
	return ok && c.IsUnused(), nil
}

func (r *InMemoryInvitationRepository) Claim(_ context.Context, code, claimantSubjectID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.codes[code]
	if !ok || !c.IsUnused() {
		return invitation.ErrInvalidOrUsedCode()
	}

	c.Status = invitation.StatusUsed
	c.ClaimedBySubjectID = claimantSubjectID
	c.ClaimedAt = &at
	c.UpdatedAt = at
	return nil
}

func (r *InMemoryInvitationRepository) CreateIfAbsent(_ context.Context, c invitation.InviteCode) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codes[c.Code]; ok {
		return false, nil
	}
	r.codes[c.Code] = &c
	return true, nil
}
