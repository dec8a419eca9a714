package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
)

const (
	defaultAPIVersion = "2024-02-15-preview"
	cognitiveScope    = "https://cognitiveservices.azure.com/.default"
)

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage providers.Usage `json:"usage"`
}

type client struct {
	httpClient httpx.Client

	credOnce sync.Once
	cred     azcore.TokenCredential
	credErr  error
}

func NewAzureClient(httpClient httpx.Client) providers.Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &client{
		httpClient: httpClient,
	}
}

// Ask calls an Azure OpenAI deployment. config.Model is the deployment id.
// Authentication is either config.Credentials.ApiKey or, with
// Azure.UseIdentity, a token from the default Azure credential chain.
func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	azureCfg := config.Credentials.Azure
	if azureCfg == nil {
		return nil, fmt.Errorf("azure configuration is required")
	}
	if azureCfg.Endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model (deployment ID) is required")
	}

	var token string
	if azureCfg.UseIdentity {
		var err error
		token, err = c.getAzureADToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Azure AD token: %w", err)
		}
	} else {
		if config.Credentials.ApiKey == "" {
			return nil, fmt.Errorf("API key is required when not using Azure identity")
		}
		token = config.Credentials.ApiKey
	}

	var messages []map[string]string
	if config.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": config.SystemPrompt})
	}
	if len(config.Instructions) > 0 {
		messages = append(messages, map[string]string{"role": "user", "content": providers.FormatInstructions(config.Instructions)})
	}
	if prompt != "" {
		messages = append(messages, map[string]string{"role": "user", "content": prompt})
	}

	apiVersion := defaultAPIVersion
	if azureCfg.ApiVersion != "" {
		apiVersion = azureCfg.ApiVersion
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimSuffix(azureCfg.Endpoint, "/"),
		config.Model,
		apiVersion)

	reqBody := map[string]interface{}{
		"messages": messages,
	}
	if config.Temperature > 0 {
		reqBody["temperature"] = config.Temperature
	}
	if config.MaxTokens > 0 {
		reqBody["max_tokens"] = config.MaxTokens
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if azureCfg.UseIdentity {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("api-key", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status: %d\n%s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	id := parsed.ID
	if id == "" {
		id = fmt.Sprintf("azure-%d", time.Now().UnixNano())
	}

	return &providers.CompletionResponse{
		ID:       id,
		Model:    config.Model,
		Response: parsed.Choices[0].Message.Content,
		Usage:    parsed.Usage,
	}, nil
}

func (c *client) getAzureADToken(ctx context.Context) (string, error) {
	c.credOnce.Do(func() {
		c.cred, c.credErr = azidentity.NewDefaultAzureCredential(nil)
	})
	if c.credErr != nil {
		return "", fmt.Errorf("failed to create credential: %w", c.credErr)
	}
	token, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{cognitiveScope},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token.Token, nil
}
