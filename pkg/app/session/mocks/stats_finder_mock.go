package mocks

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/stretchr/testify/mock"
)

type StatsFinder struct {
	mock.Mock
}

func (m *StatsFinder) FindStats(ctx context.Context, sessionID string) (*session.Stats, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*session.Stats)
	return s, args.Error(1)
}
