package anthropic

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = "claude-haiku-4-5-20251001"
	defaultMaxTokens = 1024
)

type client struct {
	clientPool *sync.Map
}

func NewAnthropicClient() providers.Client {
	return &client{
		clientPool: &sync.Map{},
	}
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	anthropicClient := c.getOrCreateClient(config.Credentials.ApiKey, config.BaseURL)

	var messages []anthropic.MessageParam

	if len(config.Instructions) > 0 {
		messages = append(messages, anthropic.NewUserMessage(
			anthropic.NewTextBlock(providers.FormatInstructions(config.Instructions)),
		))
	}

	if prompt != "" {
		messages = append(messages, anthropic.NewUserMessage(
			anthropic.NewTextBlock(prompt),
		))
	}

	model := anthropic.Model(DefaultModel)
	if config.Model != "" {
		model = anthropic.Model(config.Model)
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}

	if config.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: config.SystemPrompt},
		}
	}

	if config.Temperature > 0 {
		params.Temperature = anthropic.Float(config.Temperature)
	}

	message, err := anthropicClient.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	var responseText string
	for _, content := range message.Content {
		if content.Type == "text" {
			responseText = content.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content returned")
	}

	return &providers.CompletionResponse{
		ID:       message.ID,
		Model:    string(model),
		Response: responseText,
		Usage: providers.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey, baseURL string) anthropic.Client {
	key := apiKey + "|" + baseURL
	if clientVal, ok := c.clientPool.Load(key); ok {
		if client, ok := clientVal.(anthropic.Client); ok {
			return client
		}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	newClient := anthropic.NewClient(opts...)
	c.clientPool.Store(key, newClient)
	return newClient
}
