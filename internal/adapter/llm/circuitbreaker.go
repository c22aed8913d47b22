package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"devforge/internal/domain"
	"devforge/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreakerProvider wraps a Provider with circuit breaker protection.
// When the wrapped provider fails repeatedly, the circuit opens and
// subsequent calls fail fast without reaching the daemon, preventing
// retry storms against a dead backend.
type CircuitBreakerProvider struct {
	inner   domain.Provider
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewCircuitBreakerProvider wraps inner with a circuit breaker.
// Zero-valued cfg fields fall back to defaults.
func NewCircuitBreakerProvider(inner domain.Provider, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerProvider {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm:" + inner.Name(),
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &CircuitBreakerProvider{inner: inner, breaker: cb, logger: logger}
}

// Complete implements domain.Provider; calls route through the breaker.
func (p *CircuitBreakerProvider) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	text, err := p.breaker.Execute(func() (string, error) {
		return p.inner.Complete(ctx, messages)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", fmt.Errorf("%w: provider %q circuit open: %v", domain.ErrProvider, p.inner.Name(), err)
		}
		return "", err
	}
	return text, nil
}

// Stream implements domain.Provider. The breaker protects stream
// initiation only; errors after the connection is established flow
// through the channel and do not trip the breaker.
func (p *CircuitBreakerProvider) Stream(ctx context.Context, messages []domain.Message) (<-chan domain.StreamResponse, error) {
	var ch <-chan domain.StreamResponse
	_, err := p.breaker.Execute(func() (string, error) {
		var streamErr error
		ch, streamErr = p.inner.Stream(ctx, messages)
		return "", streamErr
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: provider %q circuit open: %v", domain.ErrProvider, p.inner.Name(), err)
		}
		return nil, err
	}
	return ch, nil
}

// Name implements domain.Provider.
func (p *CircuitBreakerProvider) Name() string { return p.inner.Name() }

// State returns the current circuit breaker state for monitoring.
func (p *CircuitBreakerProvider) State() gobreaker.State {
	return p.breaker.State()
}

var _ domain.Provider = (*CircuitBreakerProvider)(nil)
