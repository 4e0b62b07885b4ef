package auth

import (
	"strings"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// TokenMiddleware middleware para autenticación de sesión con Fiber
type TokenMiddleware struct {
	tokenService TokenService
}

// NewAuthMiddleware crea un nuevo middleware de autenticación
func NewAuthMiddleware(tokenService TokenService) *TokenMiddleware {
	return &TokenMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate valida el token de sesión del header Authorization (o la
// cookie "session_token") y deja el AuthContext en c.Locals. Un token puente
// nunca pasa este middleware.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, terr := extractToken(c)
		if terr != nil {
			return unauthorized(c, terr)
		}

		claims, err := am.tokenService.ValidateSessionToken(token)
		if err != nil {
			return unauthorized(c, iam.ErrInvalidToken())
		}

		c.Locals(string(kernel.AuthContextKey), &kernel.AuthContext{
			UserID:    claims.UserID,
			IssuedAt:  claims.IssuedAt,
			ExpiresAt: claims.ExpiresAt,
		})

		return c.Next()
	}
}

// GetAuthContext returns the context stored by Authenticate.
func GetAuthContext(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	ac, ok := c.Locals(string(kernel.AuthContextKey)).(*kernel.AuthContext)
	return ac, ok && ac.IsValid()
}

func extractToken(c *fiber.Ctx) (string, *errx.Error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		// Verificar formato "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], nil
		}
		if token := c.Cookies("session_token"); token != "" {
			return token, nil
		}
		return "", iam.ErrInvalidToken()
	}

	if token := c.Cookies("session_token"); token != "" {
		return token, nil
	}
	return "", iam.ErrUnauthorized()
}

func unauthorized(c *fiber.Ctx, err *errx.Error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(errx.ToHTTPResponse(err))
}
