package domain

import "context"

// Provider is the interface for any LLM backend.
type Provider interface {
	// Complete sends the ordered conversation and returns the assistant's
	// single completed reply. Internal whitespace is preserved.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Stream sends the conversation and returns a channel of incremental
	// deltas. The channel yields zero or more deltas followed by exactly
	// one item with Done set, then closes. Cancelling ctx releases the
	// underlying transport promptly.
	Stream(ctx context.Context, messages []Message) (<-chan StreamResponse, error)

	// Name returns the provider's identifier (e.g., "ollama").
	Name() string
}
