package http

import (
	"github.com/NeuralTrust/PromptGuard/pkg/app/firewall"
	"github.com/NeuralTrust/PromptGuard/pkg/handlers/http/request"
	"github.com/NeuralTrust/PromptGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type checkHandler struct {
	logger  *logrus.Logger
	checker firewall.Checker
}

func NewCheckHandler(logger *logrus.Logger, checker firewall.Checker) Handler {
	return &checkHandler{
		logger:  logger,
		checker: checker,
	}
}

// Handle @Summary Check a prompt
// @Description Routes a prompt through the two-tier firewall and records the verdict on the caller's session
// @Tags Firewall
// @Accept json
// @Produce json
// @Param X-Session-Id header string false "Session ID"
// @Param request body request.CheckRequest true "Prompt to check"
// @Success 200 {object} verdict.RoutingResult "Routing result"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Tier-2 analyzer failure"
// @Router /check [post]
func (h *checkHandler) Handle(c *fiber.Ctx) error {
	var req request.CheckRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse check request")
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

	res, err := h.checker.Check(c.UserContext(), sessionID, req.Prompt)
	if err != nil {
		return handleFirewallError(c, h.logger, sessionID, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}
