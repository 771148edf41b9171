package apiv1

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	RegisterHandlers(app.Group("/api/v1"), NewAPIServer())
	return app
}

func TestPing(t *testing.T) {
	resp, err := newTestApp().Test(httptest.NewRequest("GET", "/api/v1/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var pong Pong
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pong))
	assert.Equal(t, "pong", pong.Ping)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp()
	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/v1/account"},
		{"GET", "/api/v1/account/transactions"},
		{"POST", "/api/v1/account/credits/consume"},
		{"POST", "/api/v1/blobs"},
		{"PATCH", "/api/v1/cms/pages/p1"},
		{"DELETE", "/api/v1/cms/pages/p1"},
		{"POST", "/api/v1/cms/databases/db1/documents"},
		{"POST", "/api/v1/cms/pages/p1/blocks"},
		{"PATCH", "/api/v1/cms/blocks/b1"},
		{"DELETE", "/api/v1/cms/blocks/b1"},
		{"DELETE", "/api/v1/blobs/uploads/u1/2026/10/a.png"},
	} {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, tc.method+" "+tc.path)
	}
}
