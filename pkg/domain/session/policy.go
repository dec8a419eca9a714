package session

import "fmt"

const (
	DefaultWindowSize     = 5
	DefaultAlertThreshold = 3
)

// Policy controls the sliding escalation window of every session.
type Policy struct {
	WindowSize     int `json:"window_size" mapstructure:"window_size"`
	AlertThreshold int `json:"alert_threshold" mapstructure:"alert_threshold"`
}

func DefaultPolicy() Policy {
	return Policy{
		WindowSize:     DefaultWindowSize,
		AlertThreshold: DefaultAlertThreshold,
	}
}

func (p Policy) Validate() error {
	if p.WindowSize < 1 {
		return fmt.Errorf("window size must be at least 1, got %d", p.WindowSize)
	}
	if p.AlertThreshold < 1 || p.AlertThreshold > p.WindowSize {
		return fmt.Errorf("alert threshold must be between 1 and %d, got %d", p.WindowSize, p.AlertThreshold)
	}
	return nil
}
