package authsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth"
	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/logx"
)

// Outcome is the terminal state of a callback.
type Outcome string

const (
	OutcomeSuccess     Outcome = "SUCCESS"
	OutcomeNeedsInvite Outcome = "NEEDS_INVITE"
)

// AllowList is the membership gate.
type AllowList interface {
	IsMember(ctx context.Context, subjectID string) (bool, error)
	AddMember(ctx context.Context, subjectID, note string) error
}

// InviteLedger claims single-use invite codes.
type InviteLedger interface {
	Claim(ctx context.Context, code, claimantSubjectID string) error
}

// UserDirectory upserts local users from provider profiles.
type UserDirectory interface {
	CreateOrUpdate(ctx context.Context, id identity.ExternalIdentity) (*user.User, error)
}

// CallbackResult is either SUCCESS with a session token or NEEDS_INVITE with
// a pending bridge token and the fetched identity.
type CallbackResult struct {
	Outcome      Outcome
	SessionToken string
	ExpiresAt    time.Time
	PendingToken string
	Identity     identity.ExternalIdentity
	User         *user.User
}

// SessionResult is the outcome of a successful invite redemption.
type SessionResult struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

// Orchestrator drives the two gate transitions. It keeps no state between
// calls; everything in flight lives in the signed bridge token.
type Orchestrator struct {
	oauth     auth.OAuthService
	tokens    auth.TokenService
	allowList AllowList
	invites   InviteLedger
	users     UserDirectory
}

func NewOrchestrator(
	oauth auth.OAuthService,
	tokens auth.TokenService,
	allowList AllowList,
	invites InviteLedger,
	users UserDirectory,
) *Orchestrator {
	return &Orchestrator{
		oauth:     oauth,
		tokens:    tokens,
		allowList: allowList,
		invites:   invites,
		users:     users,
	}
}

// HandleCallback turns a provider authorization code into SUCCESS or
// NEEDS_INVITE. Provider failures are AUTH_IDENTITY_PROVIDER_ERROR.
func (o *Orchestrator) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	profile, err := o.resolveIdentity(ctx, code)
	if err != nil {
		return nil, err
	}

	member, err := o.allowList.IsMember(ctx, profile.SubjectID)
	if err != nil {
		return nil, internalError(err, "allow-list lookup failed", profile.SubjectID)
	}

	if !member {
		pending, err := o.tokens.IssuePendingBridge(profile)
		if err != nil {
			return nil, internalError(err, "failed to issue pending bridge token", profile.SubjectID)
		}

		logx.WithSubject("subject", profile.SubjectID).Info("subject not on allow-list, invite code required")
		return &CallbackResult{
			Outcome:      OutcomeNeedsInvite,
			PendingToken: pending.Token,
			ExpiresAt:    pending.ExpiresAt,
			Identity:     profile,
		}, nil
	}

	u, session, err := o.startSession(ctx, profile)
	if err != nil {
		return nil, err
	}

	logx.WithSubject("subject", profile.SubjectID).
		WithField("user_id", u.ID.String()).
		Info("allow-listed subject signed in")
	return &CallbackResult{
		Outcome:      OutcomeSuccess,
		SessionToken: session.Token,
		ExpiresAt:    session.ExpiresAt,
		Identity:     profile,
		User:         u,
	}, nil
}

// HandleInviteRedemption promotes a pending bridge token into a session by
// consuming an invite code. A bad bridge token is AUTH_INVALID_BRIDGE_TOKEN
// (restart login); a bad code is INVITE_INVALID_OR_USED_CODE (retry code).
func (o *Orchestrator) HandleInviteRedemption(ctx context.Context, code, bridgeToken string) (*SessionResult, error) {
	id, err := o.tokens.VerifyPendingBridge(bridgeToken)
	if err != nil {
		if errx.IsCode(err, auth.CodeInvalidBridgeToken) {
			return nil, err
		}
		return nil, auth.ErrRegistry.NewWithCause(auth.CodeInvalidBridgeToken, err)
	}

	if err := o.invites.Claim(ctx, code, id.SubjectID); err != nil {
		if errx.IsCode(err, invitation.CodeInvalidOrUsedCode) {
			logx.WithSubject("subject", id.SubjectID).Info("invite code rejected")
			return nil, err
		}
		return nil, internalError(err, "invite code claim failed", id.SubjectID)
	}

	if err := o.allowList.AddMember(ctx, id.SubjectID, "redeemed via code "+code); err != nil {
		return nil, internalError(err, "failed to add redeemed subject to allow-list", id.SubjectID)
	}

	u, session, err := o.startSession(ctx, id)
	if err != nil {
		return nil, err
	}

	logx.WithSubject("subject", id.SubjectID).
		WithField("user_id", u.ID.String()).
		Info("invite code redeemed")
	return &SessionResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      u,
	}, nil
}

func (o *Orchestrator) resolveIdentity(ctx context.Context, code string) (identity.ExternalIdentity, error) {
	accessToken, err := o.oauth.ExchangeCodeForAccessToken(ctx, code)
	if err != nil {
		return identity.ExternalIdentity{}, asProviderError(err, "code exchange failed")
	}

	profile, err := o.oauth.FetchProfile(ctx, accessToken)
	if err != nil {
		return identity.ExternalIdentity{}, asProviderError(err, "profile fetch failed")
	}
	if !profile.Valid() {
		return identity.ExternalIdentity{}, auth.ErrIdentityProviderError().WithDetail("reason", "missing subject id")
	}
	return profile, nil
}

func (o *Orchestrator) startSession(ctx context.Context, id identity.ExternalIdentity) (*user.User, *auth.SessionToken, error) {
	u, err := o.users.CreateOrUpdate(ctx, id)
	if err != nil {
		return nil, nil, internalError(err, "failed to upsert user", id.SubjectID)
	}

	session, err := o.tokens.IssueSession(u)
	if err != nil {
		return nil, nil, internalError(err, "failed to issue session token", id.SubjectID)
	}
	return u, session, nil
}

func asProviderError(err error, reason string) error {
	logx.WithError(err).Warn(reason)
	if errx.IsCode(err, auth.CodeIdentityProviderError) {
		return err
	}
	return auth.ErrRegistry.NewWithCause(auth.CodeIdentityProviderError, err).WithDetail("reason", reason)
}

// internalError logs err with full context and returns a TypeInternal error
// whose message is hidden from clients.
func internalError(err error, msg, subjectID string) error {
	logx.WithSubject("subject", subjectID).WithError(err).Error(msg)
	return errx.Wrap(err, msg, errx.TypeInternal)
}
