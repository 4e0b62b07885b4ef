package authapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist/allowlistinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist/allowlistsrv"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth/authsrv"
	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation/invitationinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation/invitationsrv"
	"github.com/Abraxas-365/chatgate/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/user/usersrv"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontend = "https://chat.example"

// stubProvider maps authorization codes straight to profiles.
type stubProvider struct {
	profiles map[string]identity.ExternalIdentity
}

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://idp.example/authorize?state=" + url.QueryEscape(state)
}

func (p *stubProvider) ExchangeCodeForAccessToken(_ context.Context, code string) (string, error) {
	if _, ok := p.profiles[code]; !ok {
		return "", auth.ErrIdentityProviderError()
	}
	return "at-" + code, nil
}

func (p *stubProvider) FetchProfile(_ context.Context, accessToken string) (identity.ExternalIdentity, error) {
	return p.profiles[strings.TrimPrefix(accessToken, "at-")], nil
}

type testEnv struct {
	app       *fiber.App
	provider  *stubProvider
	states    *auth.InMemoryStateManager
	tokens    *auth.JWTService
	allowList *allowlistsrv.AllowListService
	invites   *invitationsrv.InvitationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		provider: &stubProvider{profiles: map[string]identity.ExternalIdentity{}},
		states:   auth.NewInMemoryStateManager(time.Minute),
		tokens:   auth.NewJWTService("handler-test-secret", time.Hour, "", ""),
	}
	env.allowList = allowlistsrv.NewAllowListService(allowlistinfra.NewInMemoryAllowListRepository())
	env.invites = invitationsrv.NewInvitationService(invitationinfra.NewInMemoryInvitationRepository())
	users := usersrv.NewUserService(userinfra.NewInMemoryUserRepository())

	orch := authsrv.NewOrchestrator(env.provider, env.tokens, env.allowList, env.invites, users)
	h := NewHandlers(orch, env.provider, env.states, env.invites, users,
		authinfra.NewLogxAuditService(), auth.NewAuthMiddleware(env.tokens), frontend+"/")

	env.app = fiber.New()
	h.RegisterRoutes(env.app)
	return env
}

func (e *testEnv) state(t *testing.T) string {
	t.Helper()
	s := e.states.GenerateState()
	require.NoError(t, e.states.StoreState(context.Background(), s))
	return s
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) callback(t *testing.T, query url.Values) url.Values {
	t.Helper()
	resp := e.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/callback?"+query.Encode(), nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, frontend+"/callback", loc.Scheme+"://"+loc.Host+loc.Path)
	return loc.Query()
}

func postJSON(path string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

var carol = identity.ExternalIdentity{SubjectID: "carol-openid-123456", DisplayName: "Carol"}

func TestOAuthURL(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/auth/oauth-url", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	state, _ := body["state"].(string)
	require.NotEmpty(t, state)
	assert.Contains(t, body["url"], url.QueryEscape(state))
	assert.True(t, env.states.ValidateState(context.Background(), state))
}

func TestCallback_ErrorRedirects(t *testing.T) {
	env := newTestEnv(t)

	q := env.callback(t, url.Values{"error": {"access_denied"}})
	assert.Equal(t, "access_denied", q.Get("error"))

	q = env.callback(t, url.Values{"state": {env.state(t)}})
	assert.Equal(t, "missing_code", q.Get("error"))

	q = env.callback(t, url.Values{"code": {"C1"}, "state": {"forged"}})
	assert.Equal(t, "invalid_state", q.Get("error"))

	q = env.callback(t, url.Values{"code": {"unknown"}, "state": {env.state(t)}})
	assert.Equal(t, "oauth_failed", q.Get("error"))
}

func TestCallback_StateIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.provider.profiles["C1"] = carol
	state := env.state(t)

	q := env.callback(t, url.Values{"code": {"C1"}, "state": {state}})
	assert.Equal(t, "true", q.Get("need_invite"))

	q = env.callback(t, url.Values{"code": {"C1"}, "state": {state}})
	assert.Equal(t, "invalid_state", q.Get("error"))
}

func TestInviteFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.provider.profiles["C1"] = carol
	_, err := env.invites.Seed(context.Background(), []string{"INV1"}, "")
	require.NoError(t, err)

	q := env.callback(t, url.Values{"code": {"C1"}, "state": {env.state(t)}})
	require.Equal(t, "true", q.Get("need_invite"))
	pending := q.Get("pending_token")
	require.NotEmpty(t, pending)

	resp := env.do(t, postJSON("/api/invite-codes/check", map[string]string{"code": "INV1"}))
	assert.Equal(t, true, decode(t, resp)["valid"])

	resp = env.do(t, postJSON("/api/invite-codes/validate", map[string]string{"code": "NOPE", "pendingToken": pending}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVITE_INVALID_OR_USED_CODE", decode(t, resp)["code"])

	resp = env.do(t, postJSON("/api/invite-codes/validate", map[string]string{"code": "INV1", "pendingToken": pending}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session, _ := decode(t, resp)["token"].(string)
	require.NotEmpty(t, session)

	resp = env.do(t, postJSON("/api/invite-codes/check", map[string]string{"code": "INV1"}))
	assert.Equal(t, false, decode(t, resp)["valid"])

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+session)
	resp = env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode(t, resp)
	assert.Equal(t, "caro****3456", me["open_id"])
	assert.Equal(t, "Carol", me["display_name"])

	q = env.callback(t, url.Values{"code": {"C1"}, "state": {env.state(t)}})
	assert.NotEmpty(t, q.Get("token"))
	assert.Empty(t, q.Get("need_invite"))
}

func TestValidateInviteCode_BadBridgeAsksForRestart(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.invites.Seed(context.Background(), []string{"INV2"}, "")
	require.NoError(t, err)

	resp := env.do(t, postJSON("/api/invite-codes/validate", map[string]string{"code": "INV2", "pendingToken": "garbage"}))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "AUTH_INVALID_BRIDGE_TOKEN", body["code"])
	assert.Equal(t, true, body["restart_login"])

	ok, err := env.invites.IsRedeemable(context.Background(), "INV2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateInviteCode_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, postJSON("/api/invite-codes/validate", map[string]string{"code": "X"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMe_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
