package http

import (
	"strings"

	appSession "github.com/NeuralTrust/PromptGuard/pkg/app/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getSessionStatsHandler struct {
	logger *logrus.Logger
	finder appSession.StatsFinder
}

func NewGetSessionStatsHandler(logger *logrus.Logger, finder appSession.StatsFinder) Handler {
	return &getSessionStatsHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary Session escalation stats
// @Description Returns the escalation counters of a session without creating it
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} session.Stats "Session stats"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /session/{session_id}/stats [get]
func (h *getSessionStatsHandler) Handle(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Params("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id is required"})
	}

	stats, err := h.finder.FindStats(c.UserContext(), sessionID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		h.logger.WithError(err).WithField("session_id", sessionID).Error("failed to load session stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load session stats"})
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}
