package router_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/common"
	handlers "github.com/NeuralTrust/PromptGuard/pkg/handlers/http"
	"github.com/NeuralTrust/PromptGuard/pkg/middleware"
	"github.com/NeuralTrust/PromptGuard/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct {
	name string
}

func (h *echoHandler) Handle(c *fiber.Ctx) error {
	return c.SendString(h.name + ":" + middleware.SessionID(c) + ":" + c.Params("session_id"))
}

func newTransport() *handlers.HandlerTransport {
	return &handlers.HandlerTransport{
		CheckHandler:           &echoHandler{name: "check"},
		ChatHandler:            &echoHandler{name: "chat"},
		GetSessionStatsHandler: &echoHandler{name: "stats"},
		ListDecisionsHandler:   &echoHandler{name: "decisions"},
		GetStatsHandler:        &echoHandler{name: "summary"},
		GetVersionHandler:      &echoHandler{name: "version"},
	}
}

func call(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestFirewallRouter_Routes(t *testing.T) {
	app := fiber.New()
	mw := &middleware.Transport{
		SecurityMiddleware: middleware.NewSecurityMiddleware(),
		SessionMiddleware:  middleware.NewSessionMiddleware(),
	}
	require.NoError(t, router.NewFirewallRouter(mw, newTransport()).BuildRoutes(app))

	status, body := call(t, app, fiber.MethodPost, "/check", map[string]string{common.SessionIDHeader: "s1"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "check:s1:", body)

	status, body = call(t, app, fiber.MethodPost, "/chat", map[string]string{common.SessionIDHeader: "s2"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "chat:s2:", body)

	status, body = call(t, app, fiber.MethodGet, "/session/abc/stats", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "stats::abc", body)

	status, body = call(t, app, fiber.MethodGet, "/decisions", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "decisions::", body)

	status, body = call(t, app, fiber.MethodGet, "/stats", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "summary::", body)

	status, _ = call(t, app, fiber.MethodGet, "/version", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestFirewallRouter_StatsDoNotResolveSessions(t *testing.T) {
	app := fiber.New()
	mw := &middleware.Transport{SessionMiddleware: middleware.NewSessionMiddleware()}
	require.NoError(t, router.NewFirewallRouter(mw, newTransport()).BuildRoutes(app))

	req := httptest.NewRequest(fiber.MethodGet, "/session/abc/stats", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get(common.SessionIDHeader))
}

func TestFirewallRouter_InvalidTransport(t *testing.T) {
	err := router.NewFirewallRouter(&middleware.Transport{}, &handlers.HandlerTransport{}).BuildRoutes(fiber.New())
	assert.ErrorIs(t, err, router.ErrInvalidHandlerTransport)
}
