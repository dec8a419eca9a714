package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockExporter struct {
	name                 string
	validateErr          error
	withSettingsErr      error
	withSettingsExporter telemetry.Exporter
}

func newMockExporter(name string) *mockExporter {
	return &mockExporter{name: name}
}

func (m *mockExporter) Name() string {
	return m.name
}

func (m *mockExporter) ValidateConfig(map[string]interface{}) error {
	return m.validateErr
}

func (m *mockExporter) Handle(context.Context, *decision.Decision) error {
	return nil
}

func (m *mockExporter) WithSettings(map[string]interface{}) (telemetry.Exporter, error) {
	if m.withSettingsErr != nil {
		return nil, m.withSettingsErr
	}
	if m.withSettingsExporter != nil {
		return m.withSettingsExporter, nil
	}
	return m, nil
}

func (m *mockExporter) Close() {}

func TestNewExporterLocator_NoOptions(t *testing.T) {
	locator := NewExporterLocator()

	assert.NotNil(t, locator.exporters)
	assert.Empty(t, locator.exporters)
}

func TestNewExporterLocator_WithExporter_OverwritesSameName(t *testing.T) {
	first := newMockExporter("kafka")
	second := newMockExporter("kafka")

	locator := NewExporterLocator(
		WithExporter("kafka", first),
		WithExporter("kafka", second),
	)

	assert.Len(t, locator.exporters, 1)
	assert.Same(t, second, locator.exporters["kafka"])
}

func TestGetExporter(t *testing.T) {
	configured := newMockExporter("kafka-configured")
	base := newMockExporter("kafka")
	base.withSettingsExporter = configured
	locator := NewExporterLocator(WithExporter("kafka", base))

	got, err := locator.GetExporter(telemetry.ExporterConfig{Name: "kafka"})
	require.NoError(t, err)
	assert.Same(t, configured, got)
}

func TestGetExporter_Unknown(t *testing.T) {
	locator := NewExporterLocator()

	_, err := locator.GetExporter(telemetry.ExporterConfig{Name: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown exporter: nope")
}

func TestGetExporter_ValidationAndSettingsErrors(t *testing.T) {
	invalid := newMockExporter("invalid")
	invalid.validateErr = errors.New("topic is required")
	broken := newMockExporter("broken")
	broken.withSettingsErr = errors.New("no brokers")
	locator := NewExporterLocator(
		WithExporter("invalid", invalid),
		WithExporter("broken", broken),
	)

	_, err := locator.GetExporter(telemetry.ExporterConfig{Name: "invalid"})
	assert.EqualError(t, err, "topic is required")
	assert.EqualError(t, locator.ValidateExporter(telemetry.ExporterConfig{Name: "invalid"}), "topic is required")

	_, err = locator.GetExporter(telemetry.ExporterConfig{Name: "broken"})
	assert.EqualError(t, err, "no brokers")
	assert.NoError(t, locator.ValidateExporter(telemetry.ExporterConfig{Name: "broken"}))
}
