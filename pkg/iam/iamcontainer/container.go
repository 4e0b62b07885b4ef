package iamcontainer

import (
	"context"
	"net/http"

	"github.com/Abraxas-365/chatgate/pkg/config"
	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist"
	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist/allowlistinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist/allowlistsrv"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth/authapi"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth/authinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/auth/authsrv"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation/invitationinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation/invitationsrv"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/chatgate/pkg/iam/user/usersrv"
	"github.com/Abraxas-365/chatgate/pkg/logx"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// ---------------------------------------------------------------------------

type Deps struct {
	// DB backs users, allow-list and invite codes. When nil the container
	// falls back to in-memory repositories.
	DB    *sqlx.DB
	Redis *redis.Client
	Cfg   *config.Config

	// HTTPClient is used for identity provider calls. Optional.
	HTTPClient *http.Client
}

// ---------------------------------------------------------------------------
// Container: the public surface of the IAM module.
// ---------------------------------------------------------------------------

type Container struct {
	UserService       *usersrv.UserService
	AllowListService  *allowlistsrv.AllowListService
	InvitationService *invitationsrv.InvitationService
	TokenService      auth.TokenService
	OAuthService      auth.OAuthService
	Orchestrator      *authsrv.Orchestrator

	// Handlers — needed by cmd/ to register routes
	AuthHandlers *authapi.Handlers

	// Middleware — needed by cmd/ to protect route groups
	AuthMiddleware *auth.TokenMiddleware
}

// ---------------------------------------------------------------------------
// New: constructs the entire IAM dependency graph.
// Order matters: infra → repos → services → handlers → middleware.
// ---------------------------------------------------------------------------

func New(deps Deps) *Container {
	logx.Info("🔧 Initializing IAM container...")

	c := &Container{}

	// ── Repositories ─────────────────────────────────────────────────────

	var (
		userRepo       user.Repository
		allowListRepo  allowlist.Repository
		invitationRepo invitation.Repository
	)
	if deps.DB != nil {
		userRepo = userinfra.NewPostgresUserRepository(deps.DB)
		allowListRepo = allowlistinfra.NewPostgresAllowListRepository(deps.DB)
		invitationRepo = invitationinfra.NewPostgresInvitationRepository(deps.DB)
	} else {
		userRepo = userinfra.NewInMemoryUserRepository()
		allowListRepo = allowlistinfra.NewInMemoryAllowListRepository()
		invitationRepo = invitationinfra.NewInMemoryInvitationRepository()
		logx.Warn("  ⚠️  No database configured, using in-memory repositories")
	}

	// ── Infrastructure services ──────────────────────────────────────────

	var stateManager auth.StateManager
	if deps.Cfg.OAuth.StateManager.Type == "redis" && deps.Redis != nil {
		stateManager = authinfra.NewRedisStateManager(deps.Redis, deps.Cfg.OAuth.StateManager.TTL)
		logx.Info("  ✅ Using Redis state manager for OAuth")
	} else {
		stateManager = auth.NewInMemoryStateManager(deps.Cfg.OAuth.StateManager.TTL)
		logx.Warn("  ⚠️  Using in-memory state manager (not recommended for production)")
	}

	tokenService := auth.NewJWTServiceFromConfig(&deps.Cfg.Auth.JWT)
	c.TokenService = tokenService
	c.OAuthService = auth.NewProviderOAuthService(&deps.Cfg.OAuth, deps.HTTPClient)

	// ── Domain services ──────────────────────────────────────────────────

	c.UserService = usersrv.NewUserService(userRepo)
	c.AllowListService = allowlistsrv.NewAllowListService(allowListRepo)
	c.InvitationService = invitationsrv.NewInvitationService(invitationRepo)

	c.Orchestrator = authsrv.NewOrchestrator(
		c.OAuthService,
		c.TokenService,
		c.AllowListService,
		c.InvitationService,
		c.UserService,
	)

	// ── Middleware ────────────────────────────────────────────────────────

	c.AuthMiddleware = auth.NewAuthMiddleware(c.TokenService)

	// ── Handlers ─────────────────────────────────────────────────────────

	c.AuthHandlers = authapi.NewHandlers(
		c.Orchestrator,
		c.OAuthService,
		stateManager,
		c.InvitationService,
		c.UserService,
		authinfra.NewLogxAuditService(),
		c.AuthMiddleware,
		deps.Cfg.Server.FrontendURL,
	)

	logx.Info("✅ IAM container initialized")
	return c
}

// Seed loads the configured allow-list subjects and invite codes. Existing
// entries are left untouched.
func (c *Container) Seed(ctx context.Context, gate config.GateConfig) error {
	subjects, err := c.AllowListService.Seed(ctx, gate.SeedAllowList, gate.SeedNote)
	if err != nil {
		return err
	}
	codes, err := c.InvitationService.Seed(ctx, gate.SeedInviteCodes, gate.SeedNote)
	if err != nil {
		return err
	}

	logx.WithFields(logx.Fields{
		"allowlist_added": subjects,
		"invites_added":   codes,
	}).Info("  ✅ Gate seed applied")
	return nil
}
