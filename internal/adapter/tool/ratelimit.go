package tool

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"

	"devforge/internal/domain"
)

// Compile-time interface assertion.
var _ domain.Tool = (*RateLimitedTool)(nil)

// RateLimitedTool wraps a tool with a token bucket. Execute blocks until
// a token is available or the context ends, so a noisy client slows down
// instead of failing.
type RateLimitedTool struct {
	inner   domain.Tool
	limiter *rate.Limiter
}

// WithRateLimit wraps t, allowing rps executions per second with a burst
// of the same size. A non-positive rps disables limiting.
func WithRateLimit(t domain.Tool, rps int) domain.Tool {
	if rps <= 0 {
		return t
	}
	return &RateLimitedTool{
		inner:   t,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (t *RateLimitedTool) Definition() domain.ToolDefinition { return t.inner.Definition() }

func (t *RateLimitedTool) Validate(params json.RawMessage) bool { return t.inner.Validate(params) }

func (t *RateLimitedTool) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, domain.NewDomainError("tool."+t.inner.Definition().Name,
			domain.ErrToolFailure, "rate limit wait: "+err.Error())
	}
	return t.inner.Execute(ctx, params)
}
