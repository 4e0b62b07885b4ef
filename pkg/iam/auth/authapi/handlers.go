package authapi

import (
	"context"
	"net/url"
	"strings"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth/authsrv"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
	"github.com/Abraxas-365/chatgate/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// Callback error reasons sent to the frontend.
const (
	reasonMissingCode  = "missing_code"
	reasonInvalidState = "invalid_state"
	reasonOAuthFailed  = "oauth_failed"
	reasonServerError  = "server_error"
)

// InviteChecker is the read-side invite probe.
type InviteChecker interface {
	IsRedeemable(ctx context.Context, code string) (bool, error)
}

// UserReader loads the signed-in user.
type UserReader interface {
	GetByID(ctx context.Context, id kernel.UserID) (*user.User, error)
}

// Handlers exposes the gate over HTTP.
type Handlers struct {
	orchestrator *authsrv.Orchestrator
	oauth        auth.OAuthService
	states       auth.StateManager
	invites      InviteChecker
	users        UserReader
	audit        auth.AuditService
	middleware   *auth.TokenMiddleware
	frontendURL  string
}

func NewHandlers(
	orchestrator *authsrv.Orchestrator,
	oauth auth.OAuthService,
	states auth.StateManager,
	invites InviteChecker,
	users UserReader,
	audit auth.AuditService,
	middleware *auth.TokenMiddleware,
	frontendURL string,
) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		oauth:        oauth,
		states:       states,
		invites:      invites,
		users:        users,
		audit:        audit,
		middleware:   middleware,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
	}
}

// RegisterRoutes mounts:
//
//	GET  /api/auth/oauth-url
//	GET  /api/auth/callback
//	POST /api/invite-codes/validate
//	POST /api/invite-codes/check
//	GET  /api/users/me            (session required)
func (h *Handlers) RegisterRoutes(app fiber.Router) {
	authGroup := app.Group("/api/auth")
	authGroup.Get("/oauth-url", h.OAuthURL)
	authGroup.Get("/callback", h.Callback)

	invites := app.Group("/api/invite-codes")
	invites.Post("/validate", h.ValidateInviteCode)
	invites.Post("/check", h.CheckInviteCode)

	app.Get("/api/users/me", h.middleware.Authenticate(), h.Me)
}

// ============================================================================
// OAuth
// ============================================================================

// OAuthURL issues a fresh state and returns the provider authorize URL.
func (h *Handlers) OAuthURL(c *fiber.Ctx) error {
	state := h.states.GenerateState()
	if err := h.states.StoreState(c.UserContext(), state); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"url":   h.oauth.AuthCodeURL(state),
		"state": state,
	})
}

// Callback is the provider redirect target. It always answers with a 302 to
// the frontend callback page.
func (h *Handlers) Callback(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if providerErr := c.Query("error"); providerErr != "" {
		h.audit.LogLoginFailure(ctx, "provider_error:"+providerErr, c.IP(), nil)
		return h.redirect(c, url.Values{"error": {providerErr}})
	}

	code := c.Query("code")
	if code == "" {
		h.audit.LogLoginFailure(ctx, reasonMissingCode, c.IP(), nil)
		return h.redirect(c, url.Values{"error": {reasonMissingCode}})
	}

	if !h.states.ValidateState(ctx, c.Query("state")) {
		h.audit.LogLoginFailure(ctx, reasonInvalidState, c.IP(), auth.ErrInvalidState())
		return h.redirect(c, url.Values{"error": {reasonInvalidState}})
	}

	result, err := h.orchestrator.HandleCallback(ctx, code)
	if err != nil {
		reason := reasonServerError
		if errx.IsCode(err, auth.CodeIdentityProviderError) {
			reason = reasonOAuthFailed
		}
		h.audit.LogLoginFailure(ctx, reason, c.IP(), err)
		return h.redirect(c, url.Values{"error": {reason}})
	}

	h.audit.LogLoginAttempt(ctx, result.Identity.SubjectID, string(result.Outcome), c.IP(), c.Get(fiber.HeaderUserAgent))

	if result.Outcome == authsrv.OutcomeNeedsInvite {
		return h.redirect(c, url.Values{
			"need_invite":   {"true"},
			"pending_token": {result.PendingToken},
		})
	}

	h.audit.LogAccountSynced(ctx, result.Identity.SubjectID, result.User.ID.String())
	return h.redirect(c, url.Values{"token": {result.SessionToken}})
}

func (h *Handlers) redirect(c *fiber.Ctx, params url.Values) error {
	return c.Redirect(h.frontendURL+"/callback?"+params.Encode(), fiber.StatusFound)
}

// ============================================================================
// Invite codes
// ============================================================================

type validateInviteRequest struct {
	Code         string `json:"code"`
	PendingToken string `json:"pendingToken"`
}

type checkInviteRequest struct {
	Code string `json:"code"`
}

// ValidateInviteCode redeems an invite code with a pending bridge token.
func (h *Handlers) ValidateInviteCode(c *fiber.Ctx) error {
	var req validateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errx.New("invalid request body", errx.TypeValidation))
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" || req.PendingToken == "" {
		return writeError(c, errx.New("code and pendingToken are required", errx.TypeValidation))
	}

	ctx := c.UserContext()
	result, err := h.orchestrator.HandleInviteRedemption(ctx, req.Code, req.PendingToken)
	if err != nil {
		h.audit.LogInviteRedemption(ctx, "", req.Code, false, c.IP())
		return writeError(c, err)
	}

	h.audit.LogInviteRedemption(ctx, result.User.SubjectID, req.Code, true, c.IP())
	h.audit.LogAccountSynced(ctx, result.User.SubjectID, result.User.ID.String())
	return c.JSON(fiber.Map{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	})
}

// CheckInviteCode reports whether a code could currently be redeemed. It
// does not reserve the code.
func (h *Handlers) CheckInviteCode(c *fiber.Ctx) error {
	var req checkInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, errx.New("invalid request body", errx.TypeValidation))
	}

	ok, err := h.invites.IsRedeemable(c.UserContext(), strings.TrimSpace(req.Code))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"valid": ok})
}

// ============================================================================
// Users
// ============================================================================

// Me returns the masked profile of the session's user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	ac, ok := auth.GetAuthContext(c)
	if !ok {
		return writeError(c, iam.ErrUnauthorized())
	}

	u, err := h.users.GetByID(c.UserContext(), ac.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(u.ToResponse())
}

// writeError renders err with its registered status. A rejected bridge token
// also tells the client to restart the login flow.
func writeError(c *fiber.Ctx, err error) error {
	resp := errx.ToHTTPResponse(err)
	if resp.StatusCode >= fiber.StatusInternalServerError {
		logx.WithFields(logx.Fields{
			"path":       c.Path(),
			"method":     c.Method(),
			"request_id": c.Get(fiber.HeaderXRequestID),
		}).WithError(err).Error("request failed")
	}

	body := fiber.Map{
		"error":   resp.Message,
		"code":    resp.Code,
		"type":    resp.Type,
		"status":  resp.StatusCode,
		"details": resp.Details,
	}
	if errx.IsCode(err, auth.CodeInvalidBridgeToken) {
		body["restart_login"] = true
	}
	return c.Status(resp.StatusCode).JSON(body)
}
