package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
)

// ============================================================================
// Token Types
// ============================================================================

// TokenType is carried in the "type" claim and separates the two token
// classes signed with the same key.
type TokenType string

const (
	TokenTypeSession TokenType = "session"
	TokenTypePending TokenType = "pending"
)

// PendingBridgeTTL is fixed; it is not configurable.
const PendingBridgeTTL = 5 * time.Minute

// SessionToken is a signed session credential for one local user.
type SessionToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingBridgeToken carries a verified identity between the callback and
// invite redemption. It is never persisted.
type PendingBridgeToken struct {
	Token     string    `json:"pending_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims is the validated content of a session token.
type TokenClaims struct {
	UserID    kernel.UserID `json:"user_id"`
	IssuedAt  time.Time     `json:"iat"`
	ExpiresAt time.Time     `json:"exp"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeIdentityProviderError = ErrRegistry.Register("IDENTITY_PROVIDER_ERROR", errx.TypeExternal, http.StatusBadGateway, "Identity provider request failed")
	CodeInvalidBridgeToken    = ErrRegistry.Register("INVALID_BRIDGE_TOKEN", errx.TypeAuthorization, http.StatusUnauthorized, "Pending login is invalid or expired, please sign in again")
	CodeInvalidState          = ErrRegistry.Register("INVALID_STATE", errx.TypeValidation, http.StatusBadRequest, "Invalid OAuth state")
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Token validation failed")
)

// Helper functions
func ErrIdentityProviderError() *errx.Error {
	return ErrRegistry.New(CodeIdentityProviderError)
}

func ErrInvalidBridgeToken() *errx.Error {
	return ErrRegistry.New(CodeInvalidBridgeToken)
}

func ErrInvalidState() *errx.Error {
	return ErrRegistry.New(CodeInvalidState)
}

func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrTokenValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenValidationFailed)
}
