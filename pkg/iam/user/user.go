package user

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
)

// User is the local account correlated 1:1 with an external subject. It is
// refreshed on every successful login and never deleted by the gate.
type User struct {
	ID          kernel.UserID `db:"id" json:"id"`
	SubjectID   string        `db:"subject_id" json:"subject_id"`
	FederatedID string        `db:"federated_id" json:"federated_id"`
	DisplayName string        `db:"display_name" json:"display_name"`
	AvatarURL   string        `db:"avatar_url" json:"avatar_url"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// FromIdentity builds an unsaved User from a provider profile.
func FromIdentity(id identity.ExternalIdentity, now time.Time) User {
	return User{
		SubjectID:   id.SubjectID,
		FederatedID: id.FederatedID,
		DisplayName: id.DisplayName,
		AvatarURL:   id.AvatarURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Refresh overwrites the provider-sourced fields with the latest profile.
func (u *User) Refresh(id identity.ExternalIdentity, now time.Time) {
	u.FederatedID = id.FederatedID
	u.DisplayName = id.DisplayName
	u.AvatarURL = id.AvatarURL
	u.UpdatedAt = now
}

// UserResponse is the client-facing view; the subject id is masked.
type UserResponse struct {
	ID          kernel.UserID `json:"id"`
	SubjectID   string        `json:"open_id"`
	DisplayName string        `json:"display_name"`
	AvatarURL   string        `json:"avatar"`
}

// ToResponse converts the entity into its masked response form.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		SubjectID:   identity.MaskForDisplay(u.SubjectID),
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
)

func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}
