package llm

import (
	"context"
	"log/slog"
	"strings"

	"devforge/internal/domain"
	"devforge/internal/infra/config"
)

// Client is the provider-polymorphic façade. It owns exactly one backend
// and exposes no generic parameter to callers.
type Client struct {
	provider domain.Provider
}

// New creates a client around an explicit provider.
func New(provider domain.Provider) *Client {
	return &Client{provider: provider}
}

// FromEnv builds a client from environment configuration alone.
// LLM_PROVIDER selects the backend (case-insensitive, default "ollama");
// an unknown selection fails with a configuration error carrying the
// offending name. Environment is read once, here.
func FromEnv(logger *slog.Logger) (*Client, error) {
	cfg := config.Defaults()
	config.ApplyEnvOverrides(cfg)
	return NewFromConfig(cfg.LLM, logger)
}

// NewFromConfig resolves the backend named by cfg.Provider and wraps it
// with a circuit breaker when enabled.
func NewFromConfig(cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	var provider domain.Provider

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "ollama":
		provider = NewOllamaProvider(cfg.Ollama, logger)
	default:
		return nil, domain.NewDomainError("llm.NewFromConfig", domain.ErrConfig,
			"unknown provider: "+cfg.Provider)
	}

	if cfg.CircuitBreaker.Enabled {
		provider = NewCircuitBreakerProvider(provider, cfg.CircuitBreaker, logger)
	}

	return New(provider), nil
}

// Complete sends the ordered conversation and returns the assistant's
// completed reply as a single string.
func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	return c.provider.Complete(ctx, messages)
}

// Stream returns a single-consumer channel of deltas. Cancel ctx to
// release the underlying transport before exhaustion.
func (c *Client) Stream(ctx context.Context, messages []domain.Message) (<-chan domain.StreamResponse, error) {
	return c.provider.Stream(ctx, messages)
}

// ProviderName returns the backend's self-declared name.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}
