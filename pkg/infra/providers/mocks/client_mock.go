package mocks

import (
	"context"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) Ask(ctx context.Context, config *providers.Config, prompt string) (*providers.CompletionResponse, error) {
	args := m.Called(ctx, config, prompt)
	resp, _ := args.Get(0).(*providers.CompletionResponse)
	return resp, args.Error(1)
}

type ProviderLocator struct {
	mock.Mock
}

func (m *ProviderLocator) Get(provider string) (providers.Client, error) {
	args := m.Called(provider)
	client, _ := args.Get(0).(providers.Client)
	return client, args.Error(1)
}
