package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/app/telemetry"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	domain "github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
	factory "github.com/NeuralTrust/PromptGuard/pkg/infra/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExporter struct {
	name        string
	validateErr error
	closed      int
}

func (s *stubExporter) Name() string { return s.name }

func (s *stubExporter) ValidateConfig(map[string]interface{}) error { return s.validateErr }

func (s *stubExporter) Handle(context.Context, *decision.Decision) error { return nil }

func (s *stubExporter) WithSettings(map[string]interface{}) (domain.Exporter, error) { return s, nil }

func (s *stubExporter) Close() { s.closed++ }

func TestExportersBuilder_Build(t *testing.T) {
	good := &stubExporter{name: "decision_log"}
	bad := &stubExporter{name: "kafka", validateErr: errors.New("kafka topic is required")}
	locator := factory.NewExporterLocator(
		factory.WithExporter("decision_log", good),
		factory.WithExporter("kafka", bad),
	)
	builder := telemetry.NewTelemetryExportersBuilder(locator)

	exporters, err := builder.Build([]domain.ExporterConfig{{Name: "decision_log"}})
	require.NoError(t, err)
	assert.Len(t, exporters, 1)

	_, err = builder.Build([]domain.ExporterConfig{{Name: "decision_log"}, {Name: "kafka"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `telemetry exporter "kafka"`)
	assert.Equal(t, 1, good.closed)
}

func TestExportersValidator_Validate(t *testing.T) {
	locator := factory.NewExporterLocator(factory.WithExporter("decision_log", &stubExporter{name: "decision_log"}))
	validator := telemetry.NewTelemetryExportersValidator(locator)

	assert.NoError(t, validator.Validate([]domain.ExporterConfig{{Name: "decision_log"}}))
	assert.ErrorContains(t, validator.Validate([]domain.ExporterConfig{{Name: "splunk"}}), "unknown exporter: splunk")
}
