package invitation

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
)

// Status of an invite code. A code moves UNUSED -> USED exactly once.
type Status string

const (
	StatusUnused Status = "UNUSED"
	StatusUsed   Status = "USED"
)

// InviteCode is a single-use token that admits one new subject to the
// allow-list. Codes are case-sensitive.
type InviteCode struct {
	Code               string     `db:"code" json:"code"`
	Status             Status     `db:"status" json:"status"`
	Note               string     `db:"note" json:"note,omitempty"`
	ClaimedBySubjectID string     `db:"claimed_by_subject_id" json:"-"`
	ClaimedAt          *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// IsUnused reports whether the code can still be claimed.
func (c *InviteCode) IsUnused() bool {
	return c.Status == StatusUnused
}

// NewInviteCode builds an UNUSED code.
func NewInviteCode(code, note string, now time.Time) InviteCode {
	return InviteCode{
		Code:      code,
		Status:    StatusUnused,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("INVITE")

var (
	CodeInvalidOrUsedCode = ErrRegistry.Register("INVALID_OR_USED_CODE", errx.TypeValidation, http.StatusBadRequest, "Invite code is invalid or has already been used")
)

// ErrInvalidOrUsedCode does not distinguish unknown from already-claimed codes.
func ErrInvalidOrUsedCode() *errx.Error {
	return ErrRegistry.New(CodeInvalidOrUsedCode)
}
