package llm

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"devforge/internal/domain"
)

// parseNDJSONStream reads newline-delimited JSON from body and converts each
// line into a StreamResponse using the provider-specific parseLine function.
// Partial lines are buffered across reads; a final line without a trailing
// newline is still delivered.
//
// Termination: the first item with Done set is emitted and the stream ends,
// trailing bytes discarded. A malformed line yields a single error item and
// ends the stream. The channel is closed and body released on every path,
// including ctx cancellation.
func parseNDJSONStream(ctx context.Context, body io.ReadCloser, parseLine func(data []byte) (domain.StreamResponse, error)) <-chan domain.StreamResponse {
	ch := make(chan domain.StreamResponse, 16)
	go func() {
		defer close(ch)
		defer body.Close()

		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxResponseBody)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			resp, err := parseLine(line)
			if err != nil {
				emit(ctx, ch, domain.StreamResponse{Err: domain.WrapOp("decode stream line", err)})
				return
			}

			if !emit(ctx, ch, resp) {
				return
			}
			if resp.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			emit(ctx, ch, domain.StreamResponse{Err: domain.WrapOp("read stream", err)})
		}
	}()
	return ch
}

func emit(ctx context.Context, ch chan<- domain.StreamResponse, resp domain.StreamResponse) bool {
	select {
	case ch <- resp:
		return true
	case <-ctx.Done():
		return false
	}
}

