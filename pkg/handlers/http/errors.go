package http

import (
	"errors"

	"github.com/NeuralTrust/PromptGuard/pkg/app/chat"
	"github.com/NeuralTrust/PromptGuard/pkg/domain"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// handleFirewallError maps routing failures onto HTTP statuses. Tier-2
// failures are upstream failures and are never turned into a verdict here.
func handleFirewallError(c *fiber.Ctx, logger *logrus.Logger, sessionID string, err error) error {
	entry := logger.WithError(err).WithField("session_id", sessionID)
	switch {
	case errors.Is(err, verdict.ErrAnalysisParse):
		entry.Warn("tier-2 returned an unusable analysis")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "tier-2 analysis could not be parsed"})
	case errors.Is(err, verdict.ErrAnalyzerUnavailable):
		entry.Warn("tier-2 analyzer unavailable")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "tier-2 analyzer unavailable"})
	case errors.Is(err, chat.ErrDownstreamFailure):
		entry.Warn("downstream model failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "downstream model failure"})
	case domain.IsNotFoundError(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		entry.Error("failed to process prompt")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to process prompt"})
	}
}
