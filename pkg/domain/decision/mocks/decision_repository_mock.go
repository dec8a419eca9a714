package mocks

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) Save(ctx context.Context, d *decision.Decision) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *Repository) ListRecent(ctx context.Context, limit int) ([]*decision.Decision, error) {
	args := m.Called(ctx, limit)
	out, _ := args.Get(0).([]*decision.Decision)
	return out, args.Error(1)
}

func (m *Repository) Summary(ctx context.Context) (*decision.Summary, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*decision.Summary)
	return out, args.Error(1)
}
