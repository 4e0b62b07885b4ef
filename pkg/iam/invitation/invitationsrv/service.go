package invitationsrv

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation"
	"github.com/Abraxas-365/chatgate/pkg/logx"
)

// InvitationService is the invite-code ledger.
type InvitationService struct {
	repo invitation.Repository
	now  func() time.Time
}

func NewInvitationService(repo invitation.Repository) *InvitationService {
	return &InvitationService{repo: repo, now: time.Now}
}

// Claim marks code as used by claimantSubjectID. Unknown, already-used and
// concurrently-lost codes all fail with INVITE_INVALID_OR_USED_CODE.
func (s *InvitationService) Claim(ctx context.Context, code, claimantSubjectID string) error {
	if code == "" {
		return invitation.ErrInvalidOrUsedCode()
	}

	if err := s.repo.Claim(ctx, code, claimantSubjectID, s.now().UTC()); err != nil {
		if errx.IsCode(err, invitation.CodeInvalidOrUsedCode) {
			return err
		}
		return errx.Wrap(err, "failed to claim invite code", errx.TypeInternal)
	}

	logx.WithSubject("subject", claimantSubjectID).
		WithField("code", logx.Mask(code)).
		Info("invite code claimed")
	return nil
}

// IsRedeemable is a read-only probe. A true result does not reserve the code.
func (s *InvitationService) IsRedeemable(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	return s.repo.ExistsUnused(ctx, code)
}

// Seed creates each code as UNUSED unless it already exists. Blank entries
// are skipped. It returns how many codes were created.
func (s *InvitationService) Seed(ctx context.Context, codes []string, note string) (int, error) {
	now := s.now().UTC()
	created := 0
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		ok, err := s.repo.CreateIfAbsent(ctx, invitation.NewInviteCode(code, note, now))
		if err != nil {
			return created, errx.Wrap(err, "failed to seed invite code", errx.TypeInternal)
		}
		if ok {
			created++
		}
	}

	if created > 0 {
		logx.WithField("count", created).Info("invite codes seeded")
	}
	return created, nil
}
