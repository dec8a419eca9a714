package firewall

import (
	"context"
	"fmt"
	"strings"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prompts"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
)

// AnalysisContext is the session view handed to Tier-2.
type AnalysisContext struct {
	TotalProcessed int
	AttackPatterns map[string]int
	RecentHistory  []session.Entry
}

func NewAnalysisContext(s *session.Session) AnalysisContext {
	return AnalysisContext{
		TotalProcessed: s.TotalProcessed(),
		AttackPatterns: s.AttackTypeCounts(),
		RecentHistory:  s.Recent(),
	}
}

//go:generate mockery --name=Classifier --dir=. --output=./mocks --filename=classifier_mock.go --case=underscore --with-expecter

// Classifier is the fast Tier-1 model. It returns raw text which the router
// normalises.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

//go:generate mockery --name=Analyzer --dir=. --output=./mocks --filename=analyzer_mock.go --case=underscore --with-expecter

// Analyzer is the slow Tier-2 model. It returns raw text which the router
// parses with ExtractAnalysis.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string, actx AnalysisContext) (string, error)
}

// TierSettings binds a tier to a provider call.
type TierSettings struct {
	Client   providers.Client
	Config   providers.Config
	Template string
	Renderer prompts.Renderer
	Breaker  httpx.CircuitBreaker
}

type classifier struct {
	settings TierSettings
}

func NewClassifier(settings TierSettings) Classifier {
	if settings.Template == "" {
		settings.Template = prompts.Tier1
	}
	return &classifier{settings: settings}
}

func (c *classifier) Classify(ctx context.Context, prompt string) (string, error) {
	content, err := c.settings.Renderer.Render(c.settings.Template, prompts.Tier1Data{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: %v", verdict.ErrClassifierFailure, err)
	}
	text, err := ask(ctx, c.settings, content)
	if err != nil {
		return "", fmt.Errorf("%w: %w", verdict.ErrClassifierFailure, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", verdict.ErrClassifierFailure)
	}
	return text, nil
}

type analyzer struct {
	settings TierSettings
}

func NewAnalyzer(settings TierSettings) Analyzer {
	if settings.Template == "" {
		settings.Template = prompts.Tier2
	}
	return &analyzer{settings: settings}
}

func (a *analyzer) Analyze(ctx context.Context, prompt string, actx AnalysisContext) (string, error) {
	content, err := a.settings.Renderer.Render(a.settings.Template, prompts.Tier2Data{
		Prompt:         prompt,
		TotalProcessed: actx.TotalProcessed,
		AttackPatterns: actx.AttackPatterns,
		RecentHistory:  actx.RecentHistory,
	})
	if err != nil {
		return "", fmt.Errorf("render tier-2 prompt: %w", err)
	}
	return ask(ctx, a.settings, content)
}

func ask(ctx context.Context, settings TierSettings, content string) (string, error) {
	cfg := settings.Config
	var resp *providers.CompletionResponse
	call := func() error {
		var err error
		resp, err = settings.Client.Ask(ctx, &cfg, content)
		return err
	}
	var err error
	if settings.Breaker != nil {
		err = settings.Breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}
