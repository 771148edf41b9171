package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/usercontext"
)

func loginAs(ctx usercontext.UserContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, ctx)
		return c.Next()
	}
}

func ok(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

func TestRequireAPISessionAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", RequireAPISessionAuth, ok)
	app.Get("/user", loginAs(usercontext.UserContext{UserID: 1, IsLoggedIn: true}), RequireAPISessionAuth, ok)

	resp, err := app.Test(httptest.NewRequest("GET", "/anon", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAPIAdmin(t *testing.T) {
	app := fiber.New()
	app.Get("/user", loginAs(usercontext.UserContext{UserID: 1, IsLoggedIn: true}), RequireAPIAdmin, ok)
	app.Get("/admin", loginAs(usercontext.UserContext{UserID: 2, IsLoggedIn: true, IsAdmin: true}), RequireAPIAdmin, ok)

	resp, err := app.Test(httptest.NewRequest("GET", "/user", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUserContextMiddlewareWithoutStore(t *testing.T) {
	app := fiber.New()
	app.Use(UserContextMiddleware)
	app.Get("/", func(c *fiber.Ctx) error {
		assert.False(t, usercontext.IsLoggedIn(c))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimiterConfigRejectsOverLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "2")

	app := fiber.New()
	app.Use(limiter.New(RateLimiterConfig(nil)))
	app.Get("/", ok)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
