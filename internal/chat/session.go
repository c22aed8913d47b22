// Package chat runs conversational sessions against the configured LLM
// backend, either one-shot or as an interactive REPL.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"devforge/internal/adapter/llm"
	"devforge/internal/domain"
)

const defaultSystemPrompt = "You are a concise assistant for software development tasks."

// Session holds one conversation. History lives in memory only and dies
// with the session.
type Session struct {
	id      string
	client  *llm.Client
	history []domain.Message
	logger  *slog.Logger
}

// NewSession starts a conversation seeded with the system prompt.
// An empty systemPrompt falls back to the default.
func NewSession(client *llm.Client, systemPrompt string, logger *slog.Logger) *Session {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &Session{
		id:      uuid.NewString(),
		client:  client,
		history: []domain.Message{domain.SystemMessage(systemPrompt)},
		logger:  logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// History returns a copy of the conversation so far.
func (s *Session) History() []domain.Message {
	return append([]domain.Message(nil), s.history...)
}

// Ask sends prompt with full history and streams the reply's deltas to
// out as they arrive. The completed reply joins the history and is
// returned.
func (s *Session) Ask(ctx context.Context, prompt string, out io.Writer) (string, error) {
	s.history = append(s.history, domain.UserMessage(prompt))

	ch, err := s.client.Stream(ctx, s.history)
	if err != nil {
		// Keep history consistent: the exchange did not happen.
		s.history = s.history[:len(s.history)-1]
		return "", err
	}

	var reply strings.Builder
	for item := range ch {
		if item.Err != nil {
			s.history = s.history[:len(s.history)-1]
			return "", item.Err
		}
		if item.Content != "" {
			reply.WriteString(item.Content)
			fmt.Fprint(out, item.Content)
		}
	}

	text := reply.String()
	s.history = append(s.history, domain.AssistantMessage(text))
	s.logger.Debug("chat exchange finished",
		"session", s.id,
		"turns", len(s.history),
		"chars", len(text),
	)
	return text, nil
}

// RunOneShot answers a single prompt and terminates the output with a
// newline.
func (s *Session) RunOneShot(ctx context.Context, prompt string, out io.Writer) error {
	if strings.TrimSpace(prompt) == "" {
		return domain.NewDomainError("chat.RunOneShot", domain.ErrConfig, "empty prompt")
	}
	if _, err := s.Ask(ctx, prompt, out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

// RunInteractive reads prompts line by line until EOF or an exit
// command. Blank lines are skipped; errors are reported and the loop
// continues.
func (s *Session) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Chat session %s (provider %s). Type 'exit' to quit.\n",
		s.id, s.client.ProviderName())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "" {
			continue
		}
		if prompt == "exit" || prompt == "quit" {
			break
		}

		if _, err := s.Ask(ctx, prompt, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "bye")
	return scanner.Err()
}
