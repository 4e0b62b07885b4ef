package authinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/logx"
)

// LogxAuditService implements auth.AuditService using structured logx logging.
// Subject ids and invite codes are always masked.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogLoginAttempt(_ context.Context, subjectID string, outcome string, ip string, userAgent string) {
	logx.WithFields(logx.Fields{
		"audit_event": "login_attempt",
		"subject":     logx.Mask(subjectID),
		"outcome":     outcome,
		"ip":          ip,
		"user_agent":  userAgent,
		"timestamp":   time.Now(),
	}).Info("Audit: login attempt")
}

func (s *LogxAuditService) LogLoginFailure(_ context.Context, reason string, ip string, err error) {
	logx.WithFields(logx.Fields{
		"audit_event": "login_failure",
		"reason":      reason,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).WithError(err).Warn("Audit: login failure")
}

func (s *LogxAuditService) LogInviteRedemption(_ context.Context, subjectID string, code string, success bool, ip string) {
	logx.WithFields(logx.Fields{
		"audit_event": "invite_redemption",
		"subject":     logx.Mask(subjectID),
		"code":        logx.Mask(code),
		"success":     success,
		"ip":          ip,
		"timestamp":   time.Now(),
	}).Info("Audit: invite redemption")
}

func (s *LogxAuditService) LogAccountSynced(_ context.Context, subjectID string, userID string) {
	logx.WithFields(logx.Fields{
		"audit_event": "account_synced",
		"subject":     logx.Mask(subjectID),
		"user_id":     userID,
		"timestamp":   time.Now(),
	}).Info("Audit: account synced")
}
