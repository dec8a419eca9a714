package telemetry

import (
	"fmt"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
)

// ExporterLocator holds one unconfigured prototype per exporter name and
// builds configured instances from settings.
type ExporterLocator struct {
	exporters map[string]telemetry.Exporter
}

func NewExporterLocator(opts ...ExporterLocatorOption) *ExporterLocator {
	el := &ExporterLocator{
		exporters: make(map[string]telemetry.Exporter),
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

func (p *ExporterLocator) GetExporter(exporter telemetry.ExporterConfig) (telemetry.Exporter, error) {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return nil, fmt.Errorf("unknown exporter: %s", exporter.Name)
	}
	if err := base.ValidateConfig(exporter.Settings); err != nil {
		return nil, err
	}
	return base.WithSettings(exporter.Settings)
}

func (p *ExporterLocator) ValidateExporter(exporter telemetry.ExporterConfig) error {
	base, ok := p.exporters[exporter.Name]
	if !ok {
		return fmt.Errorf("unknown exporter: %s", exporter.Name)
	}
	return base.ValidateConfig(exporter.Settings)
}
