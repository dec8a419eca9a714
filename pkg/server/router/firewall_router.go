package router

import (
	"errors"

	handlers "github.com/NeuralTrust/PromptGuard/pkg/handlers/http"
	"github.com/NeuralTrust/PromptGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const (
	CheckPath        = "/check"
	ChatPath         = "/chat"
	SessionStatsPath = "/session/:session_id/stats"
	DecisionsPath    = "/decisions"
	StatsPath        = "/stats"
	VersionPath      = "/version"
	DocsPath         = "/docs/*"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

type firewallRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
}

func NewFirewallRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
) ServerRouter {
	return &firewallRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *firewallRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	if h == nil || h.CheckHandler == nil || h.GetSessionStatsHandler == nil {
		return ErrInvalidHandlerTransport
	}
	if r.middlewareTransport == nil {
		r.middlewareTransport = &middleware.Transport{}
	}

	for _, m := range r.middlewareTransport.Global() {
		router.Use(m.Middleware())
	}

	router.Get(DocsPath, swagger.HandlerDefault)

	if h.GetVersionHandler != nil {
		router.Get(VersionPath, h.GetVersionHandler.Handle)
	}

	withSession := r.sessionHandlers()
	router.Post(CheckPath, append(withSession, h.CheckHandler.Handle)...)
	if h.ChatHandler != nil {
		router.Post(ChatPath, append(r.sessionHandlers(), h.ChatHandler.Handle)...)
	}

	router.Get(SessionStatsPath, h.GetSessionStatsHandler.Handle)

	if h.ListDecisionsHandler != nil {
		router.Get(DecisionsPath, h.ListDecisionsHandler.Handle)
	}
	if h.GetStatsHandler != nil {
		router.Get(StatsPath, h.GetStatsHandler.Handle)
	}
	return nil
}

func (r *firewallRouter) sessionHandlers() []fiber.Handler {
	if r.middlewareTransport.SessionMiddleware == nil {
		return nil
	}
	return []fiber.Handler{r.middlewareTransport.SessionMiddleware.Middleware()}
}
