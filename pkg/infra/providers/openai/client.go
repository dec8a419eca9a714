package openai

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/sync/singleflight"
)

// options understood in providers.Config.Options.
type openaiOptions struct {
	// DisableThinking turns off the reasoning phase of hybrid models served
	// through vLLM-style endpoints (chat_template_kwargs.enable_thinking).
	DisableThinking bool `mapstructure:"disable_thinking"`
}

type client struct {
	clientPool *sync.Map
	sf         singleflight.Group
}

func NewOpenaiClient() providers.Client {
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
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var opts openaiOptions
	if err := providers.DecodeOptions(config.Options, &opts); err != nil {
		return nil, fmt.Errorf("invalid openai options: %w", err)
	}

	openaiClient := c.getOrCreateClient(config.Credentials.ApiKey, config.BaseURL)

	var messages []openai.ChatCompletionMessageParamUnion

	if config.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(config.SystemPrompt))
	}

	if len(config.Instructions) > 0 {
		messages = append(messages, openai.UserMessage(providers.FormatInstructions(config.Instructions)))
	}

	if prompt != "" {
		messages = append(messages, openai.UserMessage(prompt))
	}

	params := openai.ChatCompletionNewParams{
		Model:    config.Model,
		Messages: messages,
	}

	if config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxTokens))
	}

	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}

	var reqOpts []option.RequestOption
	if opts.DisableThinking {
		reqOpts = append(reqOpts, option.WithJSONSet("chat_template_kwargs", map[string]interface{}{
			"enable_thinking": false,
		}))
	}

	resp, err := openaiClient.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("OpenAI request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       resp.ID,
		Model:    resp.Model,
		Response: resp.Choices[0].Message.Content,
		Usage: providers.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(apiKey, baseURL string) *openai.Client {
	key := apiKey + "|" + baseURL
	if v, ok := c.clientPool.Load(key); ok {
		if client, ok := v.(*openai.Client); ok {
			return client
		}
	}
	v, _, _ := c.sf.Do(key, func() (any, error) {
		if v2, ok := c.clientPool.Load(key); ok {
			return v2, nil
		}
		cli := newClient(apiKey, baseURL)
		c.clientPool.Store(key, cli)
		return cli, nil
	})
	if client, ok := v.(*openai.Client); ok {
		return client
	}
	return newClient(apiKey, baseURL)
}

func newClient(apiKey, baseURL string) *openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(opts...)
	return &cli
}
