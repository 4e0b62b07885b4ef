// Package identity holds the value object produced by the upstream identity
// provider.
package identity

import (
	"strings"

	"github.com/Abraxas-365/chatgate/pkg/logx"
)

// ExternalIdentity is the profile returned by the identity provider. Only
// SubjectID is mandatory; empty strings mean "not supplied".
type ExternalIdentity struct {
	SubjectID   string `json:"subject_id"`
	FederatedID string `json:"federated_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Valid reports whether the mandatory subject identifier is present.
func (e ExternalIdentity) Valid() bool {
	return strings.TrimSpace(e.SubjectID) != ""
}

// MaskedSubject is the only form of SubjectID allowed in logs.
func (e ExternalIdentity) MaskedSubject() string {
	return logx.Mask(e.SubjectID)
}

// MaskForDisplay shortens an identifier for API responses: first and last
// four characters around the mask marker. Identifiers of eight characters or
// fewer are returned unchanged.
func MaskForDisplay(id string) string {
	r := []rune(id)
	if len(r) <= 8 {
		return id
	}
	return string(r[:4]) + logx.MaskMarker + string(r[len(r)-4:])
}
