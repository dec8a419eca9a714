package mocks

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/stretchr/testify/mock"
)

type Chatter struct {
	mock.Mock
}

func (m *Chatter) Chat(ctx context.Context, sessionID, prompt string) (*verdict.RoutingResult, error) {
	args := m.Called(ctx, sessionID, prompt)
	r, _ := args.Get(0).(*verdict.RoutingResult)
	return r, args.Error(1)
}
