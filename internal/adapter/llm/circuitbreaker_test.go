package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"devforge/internal/domain"
	"devforge/internal/infra/config"
)

func TestCircuitBreakerPassThrough(t *testing.T) {
	inner := &scriptedProvider{deltas: []string{"fine"}}
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{}, newTestLogger())

	text, err := cb.Complete(context.Background(), []domain.Message{domain.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "fine" {
		t.Errorf("Complete() = %q, want %q", text, "fine")
	}
	if cb.Name() != "scripted" {
		t.Errorf("Name() = %q, want inner name", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	inner := &scriptedProvider{err: errors.New("daemon down")}
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{
		MaxFailures: 2,
		Timeout:     time.Minute,
	}, newTestLogger())

	ctx := context.Background()
	msgs := []domain.Message{domain.UserMessage("hi")}

	for i := 0; i < 2; i++ {
		if _, err := cb.Complete(ctx, msgs); err == nil {
			t.Fatalf("call %d: error = nil, want provider failure", i)
		}
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open after consecutive failures", cb.State())
	}

	// Open circuit fails fast without reaching the provider.
	_, err := cb.Complete(ctx, msgs)
	if err == nil {
		t.Fatal("Complete() error = nil, want open-circuit error")
	}
	if !errors.Is(err, domain.ErrProvider) {
		t.Errorf("error = %v, want ErrProvider", err)
	}
}

func TestCircuitBreakerStreamInitiation(t *testing.T) {
	inner := &scriptedProvider{err: errors.New("refused")}
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{
		MaxFailures: 1,
		Timeout:     time.Minute,
	}, newTestLogger())

	ctx := context.Background()
	msgs := []domain.Message{domain.UserMessage("hi")}

	if _, err := cb.Stream(ctx, msgs); err == nil {
		t.Fatal("Stream() error = nil, want initiation failure")
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}
	if _, err := cb.Stream(ctx, msgs); !errors.Is(err, domain.ErrProvider) {
		t.Errorf("error = %v, want ErrProvider for open circuit", err)
	}
}

func TestCircuitBreakerStreamSuccess(t *testing.T) {
	inner := &scriptedProvider{deltas: []string{"a", "b"}}
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{}, newTestLogger())

	ch, err := cb.Stream(context.Background(), []domain.Message{domain.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var got string
	for item := range ch {
		got += item.Content
	}
	if got != "ab" {
		t.Errorf("stream concat = %q, want %q", got, "ab")
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}
