package verdict

// AnalysisResult is the structured verdict produced by Tier-2.
type AnalysisResult struct {
	Verdict          Verdict `json:"verdict"`
	AttackType       string  `json:"attack_type,omitempty"`
	Severity         string  `json:"severity,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Explanation      string  `json:"explanation,omitempty"`
	SanitisedVersion string  `json:"sanitised_version,omitempty"`
}

// RoutingResult is what the router hands back for a single prompt.
type RoutingResult struct {
	Action           string          `json:"action"`
	Tier             int             `json:"tier"`
	Tier1Label       Label           `json:"t1_label"`
	Verdict          Verdict         `json:"verdict"`
	AttackType       string          `json:"attack_type,omitempty"`
	Analysis         *AnalysisResult `json:"analysis,omitempty"`
	EscalationReason string          `json:"escalation_reason,omitempty"`
	Tier1Failed      bool            `json:"tier1_failed,omitempty"`
	SessionID        string          `json:"session_id,omitempty"`
	LatencyMs        int64           `json:"latency_ms"`
	Response         string          `json:"response,omitempty"`
}

const (
	Tier1 = 1
	Tier2 = 2

	EscalationSessionAlert = "session_alert"
)
