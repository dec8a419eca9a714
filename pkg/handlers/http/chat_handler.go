package http

import (
	"github.com/NeuralTrust/PromptGuard/pkg/app/chat"
	"github.com/NeuralTrust/PromptGuard/pkg/handlers/http/request"
	"github.com/NeuralTrust/PromptGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type chatHandler struct {
	logger  *logrus.Logger
	chatter chat.Chatter
}

func NewChatHandler(logger *logrus.Logger, chatter chat.Chatter) Handler {
	return &chatHandler{
		logger:  logger,
		chatter: chatter,
	}
}

// Handle @Summary Guarded chat
// @Description Checks the prompt and forwards allowed prompts to the downstream model
// @Tags Firewall
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "Session ID"
// @Param request body request.ChatRequest true "Chat prompt"
// @Success 200 {object} verdict.RoutingResult "Routing result with the model response when allowed"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Analyzer or downstream failure"
// @Router /chat [post]
func (h *chatHandler) Handle(c *fiber.Ctx) error {
	var req request.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sessionID := middleware.SessionID(c)
	if sessionID == "" {
		sessionID = req.SessionID
	}
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session id is required"})
	}

	res, err := h.chatter.Chat(c.UserContext(), sessionID, req.Prompt)
	if err != nil {
		return handleFirewallError(c, h.logger, sessionID, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}
