package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Firewall
	CheckHandler Handler
	ChatHandler  Handler

	// Sessions
	GetSessionStatsHandler Handler

	// Decisions
	ListDecisionsHandler Handler
	GetStatsHandler      Handler

	// System
	GetVersionHandler Handler
}
