package azure_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx/mocks"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers/azure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestAsk_RequiresAzureConfig(t *testing.T) {
	client := azure.NewAzureClient(&mocks.MockHTTPClient{})

	_, err := client.Ask(context.Background(), &providers.Config{Model: "gpt-4o"}, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "azure configuration is required")

	_, err = client.Ask(context.Background(), &providers.Config{
		Model:       "gpt-4o",
		Credentials: providers.Credentials{Azure: &providers.AzureCredentials{Endpoint: "https://x"}},
	}, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestAsk_WithAPIKey(t *testing.T) {
	httpClient := &mocks.MockHTTPClient{}
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "https://acme.openai.azure.com/openai/deployments/guard/chat/completions?api-version=2024-02-15-preview" &&
			req.Header.Get("api-key") == "az-key"
	})).Return(jsonResponse(http.StatusOK, `{
		"id": "cmpl-1",
		"choices": [{"message": {"content": "SAFE"}}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
	}`), nil)

	client := azure.NewAzureClient(httpClient)
	resp, err := client.Ask(context.Background(), &providers.Config{
		Model: "guard",
		Credentials: providers.Credentials{
			ApiKey: "az-key",
			Azure:  &providers.AzureCredentials{Endpoint: "https://acme.openai.azure.com/"},
		},
	}, "hello")

	require.NoError(t, err)
	assert.Equal(t, "SAFE", resp.Response)
	assert.Equal(t, "cmpl-1", resp.ID)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
	httpClient.AssertExpectations(t)
}

func TestAsk_Non200(t *testing.T) {
	httpClient := &mocks.MockHTTPClient{}
	httpClient.On("Do", mock.Anything).Return(jsonResponse(http.StatusTooManyRequests, `{"error":"slow down"}`), nil)

	client := azure.NewAzureClient(httpClient)
	_, err := client.Ask(context.Background(), &providers.Config{
		Model: "guard",
		Credentials: providers.Credentials{
			ApiKey: "k",
			Azure:  &providers.AzureCredentials{Endpoint: "https://acme"},
		},
	}, "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-200 status: 429")
}

func TestAsk_TransportError(t *testing.T) {
	httpClient := &mocks.MockHTTPClient{}
	httpClient.On("Do", mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	client := azure.NewAzureClient(httpClient)
	_, err := client.Ask(context.Background(), &providers.Config{
		Model: "guard",
		Credentials: providers.Credentials{
			ApiKey: "k",
			Azure:  &providers.AzureCredentials{Endpoint: "https://acme"},
		},
	}, "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed request")
}
