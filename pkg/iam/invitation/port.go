package invitation

import (
	"context"
	"time"
)

// Repository persists invite codes.
type Repository interface {
	// FindByCode returns the code or ErrInvalidOrUsedCode when unknown.
	FindByCode(ctx context.Context, code string) (*InviteCode, error)

	// ExistsUnused reports whether code exists with status UNUSED.
	ExistsUnused(ctx context.Context, code string) (bool, error)

	// Claim atomically flips code from UNUSED to USED for claimant. Exactly
	// one of any number of concurrent callers succeeds; the rest, and any
	// caller for an unknown code, get ErrInvalidOrUsedCode.
	Claim(ctx context.Context, code, claimantSubjectID string, at time.Time) error

	// CreateIfAbsent stores c unless a code with the same value exists.
	// It reports whether a row was created.
	CreateIfAbsent(ctx context.Context, c InviteCode) (bool, error)
}
