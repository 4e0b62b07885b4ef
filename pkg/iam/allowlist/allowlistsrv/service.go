package allowlistsrv

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist"
	"github.com/Abraxas-365/chatgate/pkg/logx"
)

// AllowListService answers "is this subject approved?" and admits subjects.
type AllowListService struct {
	repo allowlist.Repository
	now  func() time.Time
}

func NewAllowListService(repo allowlist.Repository) *AllowListService {
	return &AllowListService{repo: repo, now: time.Now}
}

func (s *AllowListService) IsMember(ctx context.Context, subjectID string) (bool, error) {
	if subjectID == "" {
		return false, nil
	}
	ok, err := s.repo.Exists(ctx, subjectID)
	if err != nil {
		return false, errx.Wrap(err, "failed to check allow-list membership", errx.TypeInternal).
			WithDetail("subject", logx.Mask(subjectID))
	}
	return ok, nil
}

// AddMember is idempotent: adding an existing subject succeeds and keeps the
// original entry.
func (s *AllowListService) AddMember(ctx context.Context, subjectID, note string) error {
	if subjectID == "" {
		return errx.New("subject id is required", errx.TypeValidation)
	}

	created, err := s.repo.InsertIfAbsent(ctx, allowlist.NewEntry(subjectID, note, s.now().UTC()))
	if err != nil {
		return errx.Wrap(err, "failed to add allow-list member", errx.TypeInternal).
			WithDetail("subject", logx.Mask(subjectID))
	}

	if !created {
		logx.WithSubject("subject", subjectID).Info("subject already on allow-list")
		return nil
	}
	logx.WithSubject("subject", subjectID).Info("subject added to allow-list")
	return nil
}

// Seed admits every non-blank subject. It returns how many were new.
func (s *AllowListService) Seed(ctx context.Context, subjectIDs []string, note string) (int, error) {
	now := s.now().UTC()
	added := 0
	for _, id := range subjectIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		created, err := s.repo.InsertIfAbsent(ctx, allowlist.NewEntry(id, note, now))
		if err != nil {
			return added, errx.Wrap(err, "failed to seed allow-list", errx.TypeInternal)
		}
		if created {
			added++
		}
	}

	if added > 0 {
		logx.WithField("count", added).Info("allow-list seeded")
	}
	return added, nil
}
