package auth

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(j *JWTService) *fiber.App {
	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(j).Authenticate(), func(c *fiber.Ctx) error {
		ac, ok := GetAuthContext(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(ac.UserID.String())
	})
	return app
}

func TestAuthenticate_StoresAuthContext(t *testing.T) {
	j, _ := newTestJWT()
	app := protectedApp(j)

	session, err := j.IssueSession(&user.User{ID: 42})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "42", string(body))
}

func TestAuthenticate(t *testing.T) {
	j, _ := newTestJWT()
	app := protectedApp(j)

	session, err := j.IssueSession(&user.User{ID: 9})
	require.NoError(t, err)
	pending, err := j.IssuePendingBridge(alice)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"bearer session", "Bearer " + session.Token, "", fiber.StatusOK},
		{"cookie session", "", session.Token, fiber.StatusOK},
		{"missing", "", "", fiber.StatusUnauthorized},
		{"malformed header", "Token abc", "", fiber.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", "", fiber.StatusUnauthorized},
		{"bridge token", "Bearer " + pending.Token, "", fiber.StatusUnauthorized},
		{"malformed header falls back to cookie", "Token abc", session.Token, fiber.StatusOK},
		{"bridge token in cookie", "", pending.Token, fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.Header.Set("Cookie", "session_token="+tc.cookie)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
