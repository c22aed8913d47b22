package tool

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRateLimitDisabled(t *testing.T) {
	inner := &staticTool{name: "echo"}
	assert.Same(t, inner, WithRateLimit(inner, 0))
	assert.Same(t, inner, WithRateLimit(inner, -1))
}

func TestRateLimitedToolDelegates(t *testing.T) {
	wrapped := WithRateLimit(&staticTool{name: "echo", result: "out"}, 100)

	assert.Equal(t, "echo", wrapped.Definition().Name)
	assert.True(t, wrapped.Validate(json.RawMessage(`{}`)))

	got, err := wrapped.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, `"out"`, string(got))
}

func TestRateLimitedToolBlocksBurst(t *testing.T) {
	// Burst of 1 at 1 rps: the second call must wait about a second,
	// so a short deadline has to expire first.
	wrapped := WithRateLimit(&staticTool{name: "slow"}, 1)

	_, err := wrapped.Execute(context.Background(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = wrapped.Execute(ctx, nil)
	require.Error(t, err)
}
