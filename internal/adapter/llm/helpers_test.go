package llm

import (
	"context"
	"io"
	"log/slog"

	"devforge/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedProvider is a fake backend that replays a fixed reply, both as a
// single completion and as a scripted sequence of deltas.
type scriptedProvider struct {
	deltas []string
	err    error
}

func (s *scriptedProvider) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	var full string
	for _, d := range s.deltas {
		full += d
	}
	return full, nil
}

func (s *scriptedProvider) Stream(ctx context.Context, messages []domain.Message) (<-chan domain.StreamResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan domain.StreamResponse, len(s.deltas)+1)
	for _, d := range s.deltas {
		ch <- domain.StreamResponse{Content: d}
	}
	ch <- domain.StreamResponse{Done: true}
	close(ch)
	return ch, nil
}

func (s *scriptedProvider) Name() string { return "scripted" }
