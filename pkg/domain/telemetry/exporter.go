package telemetry

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
)

// Exporter ships decision events to an external sink.
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	Handle(ctx context.Context, evt *decision.Decision) error
	WithSettings(settings map[string]interface{}) (Exporter, error)
	Close()
}
