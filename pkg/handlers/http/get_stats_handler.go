package http

import (
	appDecision "github.com/NeuralTrust/PromptGuard/pkg/app/decision"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getStatsHandler struct {
	logger *logrus.Logger
	finder appDecision.Finder
}

func NewGetStatsHandler(logger *logrus.Logger, finder appDecision.Finder) Handler {
	return &getStatsHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary Decision totals
// @Description Returns aggregated verdict, tier and attack type counts
// @Tags Decisions
// @Produce json
// @Success 200 {object} decision.Summary "Summary"
// @Router /stats [get]
func (h *getStatsHandler) Handle(c *fiber.Ctx) error {
	summary, err := h.finder.Summary(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("failed to build decision summary")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build decision summary"})
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}
