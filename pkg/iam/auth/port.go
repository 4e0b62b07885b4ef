package auth

import (
	"context"

	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
)

// TokenService signs and verifies both token classes.
type TokenService interface {
	IssueSession(u *user.User) (*SessionToken, error)
	IssuePendingBridge(id identity.ExternalIdentity) (*PendingBridgeToken, error)
	VerifyPendingBridge(token string) (identity.ExternalIdentity, error)
	ValidateSessionToken(token string) (*TokenClaims, error)
}

// OAuthService talks to the upstream identity provider.
type OAuthService interface {
	AuthCodeURL(state string) string
	ExchangeCodeForAccessToken(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (identity.ExternalIdentity, error)
}

// StateManager holds OAuth state values between the authorize redirect and
// the callback. Validate consumes the state.
type StateManager interface {
	GenerateState() string
	StoreState(ctx context.Context, state string) error
	ValidateState(ctx context.Context, state string) bool
}

// AuditService records security-relevant gate events. Subject ids passed in
// are masked by the implementation.
type AuditService interface {
	LogLoginAttempt(ctx context.Context, subjectID string, outcome string, ip string, userAgent string)
	LogLoginFailure(ctx context.Context, reason string, ip string, err error)
	LogInviteRedemption(ctx context.Context, subjectID string, code string, success bool, ip string)
	LogAccountSynced(ctx context.Context, subjectID string, userID string)
}
