package mocks

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/stretchr/testify/mock"
)

type Finder struct {
	mock.Mock
}

func (m *Finder) ListRecent(ctx context.Context, limit int) ([]*decision.Decision, error) {
	args := m.Called(ctx, limit)
	d, _ := args.Get(0).([]*decision.Decision)
	return d, args.Error(1)
}

func (m *Finder) Summary(ctx context.Context) (*decision.Summary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*decision.Summary)
	return s, args.Error(1)
}
