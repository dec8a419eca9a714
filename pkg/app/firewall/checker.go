package firewall

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=DecisionPublisher --dir=. --output=./mocks --filename=decision_publisher_mock.go --case=underscore --with-expecter

// DecisionPublisher hands finished decisions to the async telemetry pipeline.
type DecisionPublisher interface {
	Publish(d *decision.Decision)
}

//go:generate mockery --name=Checker --dir=. --output=./mocks --filename=checker_mock.go --case=underscore --with-expecter

// Checker is the processing entry point used by the transport layer.
type Checker interface {
	Check(ctx context.Context, sessionID, prompt string) (*verdict.RoutingResult, error)
}

type checker struct {
	logger    *logrus.Logger
	sessions  session.Repository
	router    Router
	publisher DecisionPublisher
	redact    func(string) string
}

type CheckerOption func(*checker)

// WithPromptRedaction rewrites the prompt stored on published decisions.
// The routing itself always sees the original prompt.
func WithPromptRedaction(fn func(string) string) CheckerOption {
	return func(c *checker) {
		c.redact = fn
	}
}

func NewChecker(
	logger *logrus.Logger,
	sessions session.Repository,
	router Router,
	publisher DecisionPublisher,
	opts ...CheckerOption,
) Checker {
	c := &checker{
		logger:    logger,
		sessions:  sessions,
		router:    router,
		publisher: publisher,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *checker) Check(ctx context.Context, sessionID, prompt string) (*verdict.RoutingResult, error) {
	s, err := c.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		c.logger.WithError(err).WithField("session_id", sessionID).Error("failed to load session")
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer s.Release()

	res, err := c.router.Process(ctx, prompt, s)
	if err != nil {
		return nil, err
	}

	if c.publisher != nil {
		stored := prompt
		if c.redact != nil {
			stored = c.redact(prompt)
		}
		c.publisher.Publish(decision.New(sessionID, stored, res))
	}
	return res, nil
}
