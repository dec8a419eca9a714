package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/app/firewall"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"github.com/sirupsen/logrus"
)

var ErrDownstreamFailure = errors.New("downstream model failure")

//go:generate mockery --name=Chatter --dir=. --output=./mocks --filename=chatter_mock.go --case=underscore --with-expecter

// Chatter guards a downstream model: the prompt is checked first and only
// allowed prompts are forwarded.
type Chatter interface {
	Chat(ctx context.Context, sessionID, prompt string) (*verdict.RoutingResult, error)
}

type Downstream struct {
	Client  providers.Client
	Config  providers.Config
	Timeout time.Duration
}

type chatter struct {
	logger     *logrus.Logger
	checker    firewall.Checker
	downstream *Downstream
}

// NewChatter forwards nothing when downstream is nil; the result is then the
// plain check result.
func NewChatter(logger *logrus.Logger, checker firewall.Checker, downstream *Downstream) Chatter {
	return &chatter{
		logger:     logger,
		checker:    checker,
		downstream: downstream,
	}
}

func (c *chatter) Chat(ctx context.Context, sessionID, prompt string) (*verdict.RoutingResult, error) {
	res, err := c.checker.Check(ctx, sessionID, prompt)
	if err != nil {
		return nil, err
	}
	if c.downstream == nil || c.downstream.Client == nil || res.Verdict != verdict.Allow {
		return res, nil
	}

	if c.downstream.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.downstream.Timeout)
		defer cancel()
	}
	cfg := c.downstream.Config
	resp, err := c.downstream.Client.Ask(ctx, &cfg, prompt)
	if err != nil {
		c.logger.WithError(err).WithField("session_id", sessionID).Error("downstream model call failed")
		return nil, fmt.Errorf("%w: %w", ErrDownstreamFailure, err)
	}
	res.Response = resp.Response
	return res, nil
}
