package gemini

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type client struct {
	clientPool *sync.Map
	mu         sync.Mutex
}

func NewGeminiClient() providers.Client {
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

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	genaiClient, err := c.getOrCreateClient(ctx, config.Credentials.ApiKey, config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	var parts []*genai.Part
	if config.SystemPrompt != "" {
		parts = append(parts, &genai.Part{Text: config.SystemPrompt})
	}
	if len(config.Instructions) > 0 {
		parts = append(parts, &genai.Part{Text: providers.FormatInstructions(config.Instructions)})
	}

	genConfig := &genai.GenerateContentConfig{}
	if len(parts) > 0 {
		genConfig.SystemInstruction = &genai.Content{Parts: parts}
	}
	if config.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(config.MaxTokens)
	}
	if config.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(float32(config.Temperature))
	}

	result, err := genaiClient.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	responseText := providers.TrimFences(result.Text())
	if responseText == "" {
		return nil, fmt.Errorf("no completions returned")
	}

	completionResp := &providers.CompletionResponse{
		ID:       fmt.Sprintf("gemini-%d", time.Now().UnixNano()),
		Model:    model,
		Response: responseText,
	}
	if result.UsageMetadata != nil {
		completionResp.Usage = providers.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return completionResp, nil
}

func (c *client) getOrCreateClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	key := apiKey + "|" + baseURL
	if v, ok := c.clientPool.Load(key); ok {
		if cli, ok := v.(*genai.Client); ok {
			return cli, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.clientPool.Load(key); ok {
		if cli, ok := v.(*genai.Client); ok {
			return cli, nil
		}
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.clientPool.Store(key, cli)
	return cli, nil
}
