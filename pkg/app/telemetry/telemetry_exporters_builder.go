package telemetry

import (
	"fmt"

	domain "github.com/NeuralTrust/PromptGuard/pkg/domain/telemetry"
	factory "github.com/NeuralTrust/PromptGuard/pkg/infra/telemetry"
)

type ExportersBuilder interface {
	Build(configs []domain.ExporterConfig) ([]domain.Exporter, error)
}

type exportersBuilder struct {
	locator *factory.ExporterLocator
}

func NewTelemetryExportersBuilder(locator *factory.ExporterLocator) ExportersBuilder {
	return &exportersBuilder{
		locator: locator,
	}
}

// Build configures every exporter. The first failure closes the exporters
// already built.
func (b *exportersBuilder) Build(configs []domain.ExporterConfig) ([]domain.Exporter, error) {
	exporters := make([]domain.Exporter, 0, len(configs))
	for _, config := range configs {
		exporter, err := b.locator.GetExporter(config)
		if err != nil {
			for _, built := range exporters {
				built.Close()
			}
			return nil, fmt.Errorf("telemetry exporter %q: %w", config.Name, err)
		}
		exporters = append(exporters, exporter)
	}
	return exporters, nil
}
