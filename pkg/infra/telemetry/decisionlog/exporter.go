package decisionlog

import (
	"context"
	"errors"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
)

const (
	ExporterName = "decision_log"
)

// Exporter writes decisions to the decision repository backing
// GET /decisions and GET /stats. It takes no settings.
type Exporter struct {
	repo decision.Repository
}

func NewDecisionLogExporter(repo decision.Repository) *Exporter {
	return &Exporter{repo: repo}
}

func (e *Exporter) Name() string {
	return ExporterName
}

func (e *Exporter) ValidateConfig(map[string]interface{}) error {
	if e.repo == nil {
		return errors.New("decision log repository is not configured")
	}
	return nil
}

func (e *Exporter) WithSettings(map[string]interface{}) (telemetry.Exporter, error) {
	return e, nil
}

func (e *Exporter) Handle(ctx context.Context, d *decision.Decision) error {
	return e.repo.Save(ctx, d)
}

func (e *Exporter) Close() {}
