package kernel

import "time"

// AuthContext is injected into every request that carried a valid session token
type AuthContext struct {
	UserID    UserID    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsValid reports whether the context identifies a user
func (ac *AuthContext) IsValid() bool {
	return ac != nil && !ac.UserID.IsEmpty()
}

// ContextKey namespaces values stored in fiber locals / context.Context
type ContextKey string

const (
	// AuthContextKey stores the *AuthContext of the authenticated caller
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey stores the request id
	RequestIDKey ContextKey = "request_id"
)
