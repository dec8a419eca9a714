package decision

import (
	"time"
	"unicode/utf8"

	"github.com/NeuralTrust/PromptGuard/pkg/domain"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/google/uuid"
)

const PromptExcerptLength = 120

// Decision is the audit record of one routed prompt.
type Decision struct {
	ID               uuid.UUID            `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID        string               `json:"session_id" gorm:"index"`
	Prompt           string               `json:"prompt"`
	Action           string               `json:"action"`
	Verdict          verdict.Verdict      `json:"verdict"`
	Tier             int                  `json:"tier"`
	Tier1Label       verdict.Label        `json:"t1_label" gorm:"column:tier1_label"`
	AttackType       string               `json:"attack_type,omitempty"`
	Severity         string               `json:"severity,omitempty"`
	Confidence       float64              `json:"confidence,omitempty"`
	EscalationReason string               `json:"escalation_reason,omitempty"`
	Tier1Failed      bool                 `json:"tier1_failed"`
	LatencyMs        int64                `json:"latency_ms"`
	Analysis         *domain.AnalysisJSON `json:"analysis,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time            `json:"created_at" gorm:"index"`
}

func (Decision) TableName() string {
	return "decisions"
}

func New(sessionID, prompt string, res *verdict.RoutingResult) *Decision {
	d := &Decision{
		ID:               uuid.New(),
		SessionID:        sessionID,
		Prompt:           Excerpt(prompt, PromptExcerptLength),
		Action:           res.Action,
		Verdict:          res.Verdict,
		Tier:             res.Tier,
		Tier1Label:       res.Tier1Label,
		AttackType:       res.AttackType,
		EscalationReason: res.EscalationReason,
		Tier1Failed:      res.Tier1Failed,
		LatencyMs:        res.LatencyMs,
		CreatedAt:        time.Now().UTC(),
	}
	if res.Analysis != nil {
		analysis := domain.AnalysisJSON(*res.Analysis)
		d.Analysis = &analysis
		d.Severity = res.Analysis.Severity
		d.Confidence = res.Analysis.Confidence
	}
	return d
}

// Excerpt truncates s to at most n runes, marking the cut with "...".
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// Summary aggregates decisions for the dashboard.
type Summary struct {
	Processed   int64            `json:"processed"`
	Blocked     int64            `json:"blocked"`
	Sanitised   int64            `json:"sanitised"`
	Allowed     int64            `json:"allowed"`
	Tier1       int64            `json:"tier1"`
	Tier2       int64            `json:"tier2"`
	AttackTypes map[string]int64 `json:"attack_types"`
}

func NewSummary() *Summary {
	return &Summary{AttackTypes: make(map[string]int64)}
}

// Add folds one decision into the summary.
func (s *Summary) Add(d *Decision) {
	s.AddCount(d, 1)
}

// AddCount folds n decisions shaped like d, as returned by grouped queries.
func (s *Summary) AddCount(d *Decision, n int64) {
	s.Processed += n
	switch d.Verdict {
	case verdict.Block:
		s.Blocked += n
	case verdict.Sanitise:
		s.Sanitised += n
	case verdict.Allow:
		s.Allowed += n
	}
	switch d.Tier {
	case verdict.Tier1:
		s.Tier1 += n
	case verdict.Tier2:
		s.Tier2 += n
	}
	if d.AttackType != "" && d.AttackType != "none" {
		s.AttackTypes[d.AttackType] += n
	}
}
