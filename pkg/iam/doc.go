// Package iam (Identity and Access Management) gates a chat application behind
// a two-stage identity check: the caller signs in with the upstream identity
// provider AND is either already on the allow-list or redeems a single-use
// invite code.
//
// # Overview
//
// The iam package is organized into sub-packages that work together:
//
//   - iam/auth         — token signer, identity provider client, OAuth state, middleware
//   - iam/auth/authsrv — the orchestrator (callback and invite redemption)
//   - iam/auth/authapi — Fiber handlers
//   - iam/allowlist    — approved subjects
//   - iam/invitation   — single-use invite codes
//   - iam/user         — local users mirrored from provider profiles
//   - iam/identity     — the provider profile value object and masking helpers
//
// # Architecture
//
// Each sub-domain follows the same layout:
//
//	xxx/        entity, error registry, repository port
//	xxxsrv/     service (business rules)
//	xxxinfra/   sqlx repository + in-memory repository
//
// Wiring lives in iam/iamcontainer:
//
//	iamc := iamcontainer.New(iamcontainer.Deps{DB: db, Redis: rdb, Cfg: cfg})
//	iamc.Seed(ctx, cfg.Gate)
//	iamc.AuthHandlers.RegisterRoutes(app)
//
// # Flow
//
// Callback (GET /api/auth/callback):
//
//	code ─► token exchange ─► profile ─► allow-listed?
//	                                      ├─ yes ─► upsert user ─► session token   (SUCCESS)
//	                                      └─ no  ─► pending bridge token (5 min)   (NEEDS_INVITE)
//
// Redemption (POST /api/invite-codes/validate):
//
//	bridge token ─► verify ─► claim code ─► add to allow-list ─► upsert user ─► session token
//
// Nothing is stored between the two calls; the verified identity rides in the
// signed bridge token. The claim is a single conditional UPDATE so exactly one
// of any number of concurrent redemptions wins.
//
// # ──────────────────────────────────────────────────────
// # ENDPOINT REFERENCE
// # ──────────────────────────────────────────────────────
//
// ### GET /api/auth/oauth-url
//
// Response 200:
//
//	{ "url": "https://oauth-login.cloud.huawei.com/oauth2/v3/authorize?...", "state": "<uuid>" }
//
// ### GET /api/auth/callback
//
// Query params: code, state, error. Always answers 302 to FRONTEND_URL/callback with one of:
//
//	?token=<session token>
//	?need_invite=true&pending_token=<bridge token>
//	?error=<provider error> | missing_code | invalid_state | oauth_failed | server_error
//
// ### POST /api/invite-codes/validate
//
//	{ "code": "INV1", "pendingToken": "<bridge token>" }
//
// Response 200: { "token": "<session token>", "expires_at": "..." }
//
// Errors:
//
//	INVITE_INVALID_OR_USED_CODE — 400, retry with another code
//	AUTH_INVALID_BRIDGE_TOKEN   — 401, "restart_login": true
//
// ### POST /api/invite-codes/check
//
//	{ "code": "INV1" }  ─►  { "valid": true }
//
// Read-only; a true answer does not reserve the code.
//
// ### GET /api/users/me
//
// Requires "Authorization: Bearer <session token>" (or the session_token cookie).
//
//	{ "id": 1, "open_id": "abcd****wxyz", "display_name": "...", "avatar": "..." }
//
// # Tokens
//
// Both classes are HS256 JWTs signed with JWT_SECRET and told apart by the
// "type" claim:
//
//	session  sub = user id,     exp = iat + JWT_SESSION_TTL (default 7 days)
//	pending  sub = subject id,  exp = iat + 5 minutes, claims fid / name / avatar
//
// A pending token is rejected by the session middleware and a session token
// is rejected by redemption. Rotating JWT_SECRET invalidates every live
// session at once.
//
// # Logging
//
// Provider subject identifiers are never logged in full; see logx.Mask.
//
// # Infrastructure Dependencies
//
// Required:
//   - PostgreSQL — users, allowlist_entries, invite_codes (migrations/000001_init.up.sql)
//
// Optional:
//   - Redis — RedisStateManager for OAuth state (replaces in-memory default)
//
// # State Management
//
//	// In-memory (default)
//	stateMgr := auth.NewInMemoryStateManager(10 * time.Minute)
//
//	// Redis (multi-instance)
//	stateMgr := authinfra.NewRedisStateManager(redisClient, 10*time.Minute)
package iam
