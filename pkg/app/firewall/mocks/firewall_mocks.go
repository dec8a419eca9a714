package mocks

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/app/firewall"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/stretchr/testify/mock"
)

type Classifier struct {
	mock.Mock
}

func (m *Classifier) Classify(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type Analyzer struct {
	mock.Mock
}

func (m *Analyzer) Analyze(ctx context.Context, prompt string, actx firewall.AnalysisContext) (string, error) {
	args := m.Called(ctx, prompt, actx)
	return args.String(0), args.Error(1)
}

type Router struct {
	mock.Mock
}

func (m *Router) Process(ctx context.Context, prompt string, s *session.Session) (*verdict.RoutingResult, error) {
	args := m.Called(ctx, prompt, s)
	res, _ := args.Get(0).(*verdict.RoutingResult)
	return res, args.Error(1)
}

type Checker struct {
	mock.Mock
}

func (m *Checker) Check(ctx context.Context, sessionID, prompt string) (*verdict.RoutingResult, error) {
	args := m.Called(ctx, sessionID, prompt)
	res, _ := args.Get(0).(*verdict.RoutingResult)
	return res, args.Error(1)
}

type DecisionPublisher struct {
	mock.Mock
}

func (m *DecisionPublisher) Publish(d *decision.Decision) {
	m.Called(d)
}
