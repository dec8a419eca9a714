package firewall

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTier1Timeout = 2 * time.Second
	DefaultTier2Timeout = 15 * time.Second

	escalationSuspicious = "suspicious"
)

//go:generate mockery --name=Router --dir=. --output=./mocks --filename=router_mock.go --case=underscore --with-expecter

// Router runs one prompt through the tiers and records exactly one verdict
// on the session. A call either returns a complete result or an error with
// the session left untouched.
type Router interface {
	Process(ctx context.Context, prompt string, s *session.Session) (*verdict.RoutingResult, error)
}

type RouterOption func(*router)

func WithTier1Timeout(d time.Duration) RouterOption {
	return func(r *router) {
		if d > 0 {
			r.tier1Timeout = d
		}
	}
}

func WithTier2Timeout(d time.Duration) RouterOption {
	return func(r *router) {
		if d > 0 {
			r.tier2Timeout = d
		}
	}
}

// WithRepository persists the session after every recorded verdict.
func WithRepository(repo session.Repository) RouterOption {
	return func(r *router) {
		r.repo = repo
	}
}

type router struct {
	logger       *logrus.Logger
	classifier   Classifier
	analyzer     Analyzer
	repo         session.Repository
	tier1Timeout time.Duration
	tier2Timeout time.Duration
}

func NewRouter(
	logger *logrus.Logger,
	classifier Classifier,
	analyzer Analyzer,
	opts ...RouterOption,
) Router {
	r := &router{
		logger:       logger,
		classifier:   classifier,
		analyzer:     analyzer,
		tier1Timeout: DefaultTier1Timeout,
		tier2Timeout: DefaultTier2Timeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *router) Process(ctx context.Context, prompt string, s *session.Session) (*verdict.RoutingResult, error) {
	start := time.Now()

	s.Begin()
	defer s.End()

	label, failed := r.classify(ctx, prompt)
	res := &verdict.RoutingResult{
		Tier1Label:  label,
		Tier1Failed: failed,
		SessionID:   s.ID,
	}

	alert := s.Alert()
	switch {
	case label == verdict.LabelObviousAttack:
		res.Tier = verdict.Tier1
		res.Verdict = verdict.Block
		res.AttackType = verdict.ObviousAttackType
	case label == verdict.LabelSafe && !alert:
		res.Tier = verdict.Tier1
		res.Verdict = verdict.Allow
	default:
		reason := escalationSuspicious
		if label == verdict.LabelSafe {
			reason = verdict.EscalationSessionAlert
			res.EscalationReason = verdict.EscalationSessionAlert
		}
		prometheus.Escalations.WithLabelValues(reason).Inc()

		analysis, err := r.analyze(ctx, prompt, s)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"session_id": s.ID,
				"t1_label":   label,
				"reason":     reason,
			}).WithError(err).Error("tier-2 analysis failed")
			return nil, err
		}
		res.Tier = verdict.Tier2
		res.Verdict = analysis.Verdict
		res.AttackType = analysis.AttackType
		res.Analysis = analysis
	}
	res.Action = res.Verdict.Action()

	s.Record(res.Verdict, res.AttackType)
	r.persist(ctx, s)

	res.LatencyMs = time.Since(start).Milliseconds()
	prometheus.DecisionsTotal.WithLabelValues(res.Action, strconv.Itoa(res.Tier)).Inc()

	r.logger.WithFields(logrus.Fields{
		"session_id":  s.ID,
		"action":      res.Action,
		"tier":        res.Tier,
		"t1_label":    label,
		"attack_type": res.AttackType,
		"latency_ms":  res.LatencyMs,
	}).Debug("prompt routed")

	return res, nil
}

// classify never fails: any Tier-1 problem is a SUSPICIOUS label.
func (r *router) classify(ctx context.Context, prompt string) (verdict.Label, bool) {
	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, r.tier1Timeout)
	defer cancel()

	raw, err := r.classifier.Classify(cctx, prompt)
	observeTier(verdict.Tier1, start)
	if err != nil {
		reason := tier1FailureReason(err)
		prometheus.Tier1Failures.WithLabelValues(reason).Inc()
		r.logger.WithError(err).WithField("reason", reason).
			Warn("tier-1 classifier failed, treating prompt as suspicious")
		prometheus.Tier1Labels.WithLabelValues(string(verdict.LabelSuspicious)).Inc()
		return verdict.LabelSuspicious, true
	}
	label := NormalizeLabel(raw)
	prometheus.Tier1Labels.WithLabelValues(string(label)).Inc()
	return label, false
}

// tier1FailureReason separates our own timeout from a classifier that answered
// badly and from anything the classifier did not wrap.
func tier1FailureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, verdict.ErrClassifierFailure):
		return "classifier"
	default:
		return "unexpected"
	}
}

func (r *router) analyze(ctx context.Context, prompt string, s *session.Session) (*verdict.AnalysisResult, error) {
	start := time.Now()
	actx, cancel := context.WithTimeout(ctx, r.tier2Timeout)
	defer cancel()

	raw, err := r.analyzer.Analyze(actx, prompt, NewAnalysisContext(s))
	observeTier(verdict.Tier2, start)
	if err != nil {
		prometheus.Tier2Errors.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: %w", verdict.ErrAnalyzerUnavailable, err)
	}
	analysis, err := ExtractAnalysis(raw)
	if err != nil {
		prometheus.Tier2Errors.WithLabelValues("parse").Inc()
		return nil, err
	}
	return analysis, nil
}

func (r *router) persist(ctx context.Context, s *session.Session) {
	if r.repo == nil {
		return
	}
	if err := r.repo.Save(context.WithoutCancel(ctx), s); err != nil {
		r.logger.WithError(err).WithField("session_id", s.ID).Error("failed to persist session")
	}
}

func observeTier(tier int, start time.Time) {
	if !prometheus.Config.EnableTierLatency {
		return
	}
	prometheus.TierLatency.WithLabelValues(strconv.Itoa(tier)).
		Observe(float64(time.Since(start).Milliseconds()))
}
