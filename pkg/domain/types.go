package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
)

// AnalysisJSON stores a Tier-2 analysis in a jsonb column.
type AnalysisJSON verdict.AnalysisResult

func (a *AnalysisJSON) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AnalysisJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("expected []byte, got %T", value)
	}
}
