package usersrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
	"github.com/Abraxas-365/chatgate/pkg/logx"
)

// UserService keeps the local user directory in sync with provider profiles.
type UserService struct {
	repo user.Repository
	now  func() time.Time
}

func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// CreateOrUpdate upserts the user for id.SubjectID with the freshest profile.
func (s *UserService) CreateOrUpdate(ctx context.Context, id identity.ExternalIdentity) (*user.User, error) {
	if !id.Valid() {
		return nil, errx.New("identity has no subject id", errx.TypeValidation)
	}

	saved, err := s.repo.Upsert(ctx, user.FromIdentity(id, s.now().UTC()))
	if err != nil {
		return nil, errx.Wrap(err, "failed to upsert user", errx.TypeInternal).
			WithDetail("subject", id.MaskedSubject())
	}

	logx.WithSubject("subject", id.SubjectID).
		WithField("user_id", saved.ID.String()).
		Debug("user profile synced")
	return saved, nil
}

// GetByID returns the user or USER_NOT_FOUND.
func (s *UserService) GetByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	return s.repo.FindByID(ctx, id)
}
