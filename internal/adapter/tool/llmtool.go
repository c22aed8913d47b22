package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devforge/internal/adapter/llm"
	"devforge/internal/domain"
)

// Default bounds for the completion tool.
const (
	llmCompleteTimeout   = 60 * time.Second
	llmCompleteMaxPrompt = 32 * 1024
)

// LLMCompleteTool delegates a prompt to the configured LLM backend and
// returns the completed reply. Registered under "llm_complete" when the
// tool is enabled in configuration.
func LLMCompleteTool(client *llm.Client, logger *slog.Logger) domain.Tool {
	return MustFuncTool(domain.ToolDefinition{
		Name:        "llm_complete",
		Description: "Send a prompt to the configured LLM and return the completed reply.",
		Parameters: domain.ParameterSchema{
			Type: "object",
			Properties: json.RawMessage(`{
				"prompt":     {"type": "string", "description": "User prompt for the model."},
				"system":     {"type": "string", "description": "Optional system instruction."},
				"timeout_ms": {"type": "integer", "minimum": 1, "description": "Timeout in milliseconds for the call."}
			}`),
			Required: []string{"prompt"},
		},
	}, func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		var p struct {
			Prompt    string `json:"prompt"`
			System    string `json:"system"`
			TimeoutMs int    `json:"timeout_ms"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}

		prompt := strings.TrimSpace(p.Prompt)
		if prompt == "" {
			return nil, domain.NewDomainError("tool.llm_complete", domain.ErrToolFailure,
				"prompt must not be empty")
		}
		if len(prompt) > llmCompleteMaxPrompt {
			return nil, domain.NewDomainError("tool.llm_complete", domain.ErrToolFailure,
				fmt.Sprintf("prompt too large: %d bytes (max %d)", len(prompt), llmCompleteMaxPrompt))
		}

		timeout := llmCompleteTimeout
		if p.TimeoutMs > 0 {
			timeout = time.Duration(p.TimeoutMs) * time.Millisecond
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var messages []domain.Message
		if p.System != "" {
			messages = append(messages, domain.SystemMessage(p.System))
		}
		messages = append(messages, domain.UserMessage(prompt))

		start := time.Now()
		text, err := client.Complete(ctx, messages)
		if err != nil {
			return nil, err
		}
		logger.Debug("llm_complete finished",
			"provider", client.ProviderName(),
			"chars", len(text),
			"elapsed", time.Since(start),
		)

		return json.Marshal(struct {
			Text string `json:"text"`
		}{Text: text})
	})
}
