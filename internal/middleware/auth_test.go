package middleware

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/auth"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/logging"
	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/principal"
)

func tokenApp(t *testing.T) (*fiber.App, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: "s3cret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	api := app.Group("/", JWTAuth(tokens))
	api.Get("/users/:user_id", RequireSelf(auth.RoleUser, "user_id"), func(c *fiber.Ctx) error {
		return c.SendString(principal.Subject(c))
	})
	api.Post("/pay", RequireSelf(auth.RoleUser, "user_id"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, tokens
}

func bearer(t *testing.T, tokens *auth.TokenService, subject, role string) string {
	t.Helper()
	pair, err := tokens.IssuePair(subject, role)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func TestJWTAuthRequiresBearer(t *testing.T) {
	app, _ := tokenApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/users/u1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/users/u1", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSelfComparesSubjectAndRole(t *testing.T) {
	app, tokens := tokenApp(t)

	cases := []struct {
		name    string
		subject string
		role    string
		want    int
	}{
		{"owner", "u1", auth.RoleUser, fiber.StatusOK},
		{"other user", "u2", auth.RoleUser, fiber.StatusForbidden},
		{"vendor with same id", "u1", auth.RoleVendor, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/users/u1", nil)
			req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, tc.subject, tc.role))
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequireSelfRejectsRouteWithoutParam(t *testing.T) {
	app, tokens := tokenApp(t)

	for _, contentType := range []string{fiber.MIMEApplicationForm, fiber.MIMEApplicationJSON} {
		body := url.Values{"user_id": {"u1"}}.Encode()
		if contentType == fiber.MIMEApplicationJSON {
			body = `{"user_id":"u1"}`
		}
		req := httptest.NewRequest(fiber.MethodPost, "/pay", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, contentType)
		req.Header.Set(fiber.HeaderAuthorization, bearer(t, tokens, "u1", auth.RoleUser))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, contentType)
	}
}

func TestLoginRateLimitPerIdentifier(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Post("/login", LoginRateLimit(cache, 2, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	login := func(identifier string) int {
		form := url.Values{"identifier": {identifier}, "password": {"x"}}
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, login("asha"))
	assert.Equal(t, fiber.StatusOK, login("ASHA"))
	assert.Equal(t, fiber.StatusTooManyRequests, login("asha"))
	assert.Equal(t, fiber.StatusOK, login("ravi"))

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, fiber.StatusOK, login("asha"))
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(nil, 1, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
