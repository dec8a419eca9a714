package http

import (
	appDecision "github.com/NeuralTrust/PromptGuard/pkg/app/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listDecisionsHandler struct {
	logger *logrus.Logger
	finder appDecision.Finder
}

func NewListDecisionsHandler(logger *logrus.Logger, finder appDecision.Finder) Handler {
	return &listDecisionsHandler{
		logger: logger,
		finder: finder,
	}
}

// Handle @Summary List recent decisions
// @Description Returns the most recent firewall decisions, newest first
// @Tags Decisions
// @Produce json
// @Param limit query int false "Maximum number of decisions"
// @Success 200 {array} decision.Decision "Decisions"
// @Failure 400 {object} map[string]interface{} "Invalid limit"
// @Router /decisions [get]
func (h *listDecisionsHandler) Handle(c *fiber.Ctx) error {
	limit := 0
	if c.Query("limit") != "" {
		limit = c.QueryInt("limit", -1)
		if limit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": domain.ErrInvalidLimit.Error()})
		}
	}

	decisions, err := h.finder.ListRecent(c.UserContext(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list decisions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list decisions"})
	}
	return c.Status(fiber.StatusOK).JSON(decisions)
}
