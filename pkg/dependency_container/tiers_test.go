package dependency_container

import (
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prompts"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConfig(t *testing.T) {
	temp := 0.0
	cfg := providerConfig(config.TierConfig{
		Provider:    "bedrock",
		Model:       "anthropic.claude-haiku",
		APIKey:      "k",
		MaxTokens:   350,
		Temperature: &temp,
		Options:     map[string]interface{}{"disable_thinking": true},
		AWS:         &config.AWSConfig{Region: "us-east-1", UseRole: true, RoleARN: "arn:aws:iam::1:role/x"},
	})

	assert.Equal(t, "anthropic.claude-haiku", cfg.Model)
	assert.Equal(t, "k", cfg.Credentials.ApiKey)
	assert.Equal(t, 350, cfg.MaxTokens)
	require.NotNil(t, cfg.Credentials.AwsBedrock)
	assert.Equal(t, "us-east-1", cfg.Credentials.AwsBedrock.Region)
	assert.True(t, cfg.Credentials.AwsBedrock.UseRole)
	assert.Nil(t, cfg.Credentials.Azure)
	assert.Equal(t, true, cfg.Options["disable_thinking"])
}

func TestNewTierSettings(t *testing.T) {
	locator := new(mocks.ProviderLocator)
	client := new(mocks.Client)
	locator.On("Get", "anthropic").Return(client, nil)
	locator.On("Get", "nope").Return(nil, errors.New("unsupported provider: nope"))

	settings, err := newTierSettings(logrus.New(), "tier2",
		config.TierConfig{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Template: prompts.Tier2},
		config.BreakerConfig{Enabled: true, MaxFailures: 3, OpenTimeout: time.Second},
		locator, prompts.NewStore(logrus.New(), ""))
	require.NoError(t, err)
	assert.Same(t, client, settings.Client)
	assert.NotNil(t, settings.Breaker)
	assert.Equal(t, prompts.Tier2, settings.Template)

	_, err = newTierSettings(logrus.New(), "tier1", config.TierConfig{Provider: "nope"},
		config.BreakerConfig{}, locator, prompts.NewStore(logrus.New(), ""))
	assert.ErrorContains(t, err, "tier1")
}

func TestMaxTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, maxTimeout(2*time.Second, 15*time.Second))
	assert.Equal(t, time.Minute, maxTimeout(time.Minute, time.Second))
}
