package dependency_container

import (
	"fmt"

	"github.com/NeuralTrust/PromptGuard/pkg/app/firewall"
	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prompts"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	providersFactory "github.com/NeuralTrust/PromptGuard/pkg/infra/providers/factory"
	"github.com/sirupsen/logrus"
)

func newTierSettings(
	logger *logrus.Logger,
	name string,
	tier config.TierConfig,
	breaker config.BreakerConfig,
	locator providersFactory.ProviderLocator,
	renderer prompts.Renderer,
) (firewall.TierSettings, error) {
	client, err := locator.Get(tier.Provider)
	if err != nil {
		return firewall.TierSettings{}, fmt.Errorf("%s: %w", name, err)
	}
	settings := firewall.TierSettings{
		Client:   client,
		Config:   providerConfig(tier),
		Template: tier.Template,
		Renderer: renderer,
	}
	if breaker.Enabled {
		settings.Breaker = httpx.NewCircuitBreaker(
			name,
			breaker.OpenTimeout,
			breaker.MaxFailures,
			httpx.WithStateChangeLogger(logger),
		)
	}
	logger.WithFields(logrus.Fields{
		"tier":     name,
		"provider": tier.Provider,
		"model":    tier.Model,
		"timeout":  tier.Timeout.String(),
	}).Info("firewall tier configured")
	return settings, nil
}

func providerConfig(tier config.TierConfig) providers.Config {
	cfg := providers.Config{
		Credentials:  providers.Credentials{ApiKey: tier.APIKey},
		Model:        tier.Model,
		BaseURL:      tier.BaseURL,
		MaxTokens:    tier.MaxTokens,
		SystemPrompt: tier.SystemPrompt,
		Options:      tier.Options,
	}
	if tier.Temperature != nil {
		cfg.Temperature = *tier.Temperature
	}
	if tier.AWS != nil {
		cfg.Credentials.AwsBedrock = &providers.AwsBedrock{
			AccessKey:    tier.AWS.AccessKey,
			SecretKey:    tier.AWS.SecretKey,
			SessionToken: tier.AWS.SessionToken,
			Region:       tier.AWS.Region,
			UseRole:      tier.AWS.UseRole,
			RoleARN:      tier.AWS.RoleARN,
		}
	}
	if tier.Azure != nil {
		cfg.Credentials.Azure = &providers.AzureCredentials{
			Endpoint:    tier.Azure.Endpoint,
			ApiVersion:  tier.Azure.APIVersion,
			UseIdentity: tier.Azure.UseIdentity,
		}
	}
	return cfg
}
