package telemetry

type Telemetry struct {
	Exporters []ExporterConfig `json:"exporters" mapstructure:"exporters"`
}

type ExporterConfig struct {
	Name     string                 `json:"name" mapstructure:"name"`
	Settings map[string]interface{} `json:"settings" mapstructure:"settings"`
}
