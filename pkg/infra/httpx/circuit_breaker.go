package httpx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type CircuitBreaker interface {
	Execute(fn func() error) error
	State() string
}

type BreakerOption func(*gobreaker.Settings)

// WithStateChangeLogger logs every open/half-open/closed transition.
func WithStateChangeLogger(logger *logrus.Logger) BreakerOption {
	return func(s *gobreaker.Settings) {
		if logger == nil {
			return
		}
		s.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		}
	}
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32, opts ...BreakerOption) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a caller giving up is not a failure of the upstream
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return &circuitBreakerWrapper{
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (g *circuitBreakerWrapper) Execute(fn func() error) error {
	_, err := g.breaker.Execute(func() (res interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
	}
	return nil
}

func (g *circuitBreakerWrapper) State() string {
	return g.breaker.State().String()
}
