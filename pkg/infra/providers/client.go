package providers

import (
	"context"
)

type Config struct {
	Credentials  Credentials            `json:"credentials" mapstructure:"credentials"`
	Model        string                 `json:"model" mapstructure:"model"`
	BaseURL      string                 `json:"base_url,omitempty" mapstructure:"base_url"`
	MaxTokens    int                    `json:"max_tokens,omitempty" mapstructure:"max_tokens"`
	Temperature  float64                `json:"temperature,omitempty" mapstructure:"temperature"`
	SystemPrompt string                 `json:"system_prompt,omitempty" mapstructure:"system_prompt"`
	Instructions []string               `json:"instructions,omitempty" mapstructure:"instructions"`
	Options      map[string]interface{} `json:"options,omitempty" mapstructure:"options"`
}

type Credentials struct {
	ApiKey     string            `json:"api_key,omitempty" mapstructure:"api_key"`
	AwsBedrock *AwsBedrock       `json:"aws_bedrock,omitempty" mapstructure:"aws_bedrock"`
	Azure      *AzureCredentials `json:"azure,omitempty" mapstructure:"azure"`
}

type AwsBedrock struct {
	AccessKey    string `json:"access_key" mapstructure:"access_key"`
	SecretKey    string `json:"secret_key" mapstructure:"secret_key"`
	SessionToken string `json:"session_token,omitempty" mapstructure:"session_token"`
	Region       string `json:"region" mapstructure:"region"`
	UseRole      bool   `json:"use_role" mapstructure:"use_role"`
	RoleARN      string `json:"role_arn,omitempty" mapstructure:"role_arn"`
}

type AzureCredentials struct {
	Endpoint    string `json:"endpoint" mapstructure:"endpoint"`
	ApiVersion  string `json:"api_version,omitempty" mapstructure:"api_version"`
	UseIdentity bool   `json:"use_identity" mapstructure:"use_identity"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter

// Client sends a single prompt to a completion model and returns its text.
// Implementations never retry; callers own timeouts through ctx.
type Client interface {
	Ask(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error)
}
