package http

import (
	"github.com/NeuralTrust/PromptGuard/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getVersionHandler struct {
	logger *logrus.Logger
}

func NewGetVersionHandler(logger *logrus.Logger) Handler {
	return &getVersionHandler{
		logger: logger,
	}
}

// Handle @Summary Get PromptGuard Version
// @Description Returns the current version of the firewall service
// @Tags System
// @Produce json
// @Success 200 {object} version.Info "Version information"
// @Router /version [get]
func (h *getVersionHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(version.GetInfo())
}
