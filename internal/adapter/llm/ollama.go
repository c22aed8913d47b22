package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"devforge/internal/domain"
	"devforge/internal/infra/config"
	"devforge/internal/infra/tracer"
)

// Compile-time interface assertion.
var _ domain.Provider = (*OllamaProvider)(nil)

// OllamaProvider implements domain.Provider against Ollama's native
// /api/chat endpoint.
type OllamaProvider struct {
	baseURL   string
	model     string
	authToken string
	client    *http.Client
	logger    *slog.Logger
}

// OllamaModel describes a locally available Ollama model.
type OllamaModel struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

// NewOllamaProvider creates a provider with configured timeouts. The host
// defaults to the local daemon when unset.
func NewOllamaProvider(cfg config.OllamaConfig, logger *slog.Logger) *OllamaProvider {
	baseURL := strings.TrimRight(cfg.Host, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}

	return &OllamaProvider{
		baseURL:   baseURL,
		model:     model,
		authToken: cfg.AuthToken,
		client:    NewHTTPClient(cfg),
		logger:    logger,
	}
}

// --- Ollama API wire types ---

type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
	Stream   bool             `json:"stream"`
}

type ollamaChatResponse struct {
	Message domain.Message `json:"message"`
	Done    bool           `json:"done"`
}

// Complete implements domain.Provider.
func (p *OllamaProvider) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.complete",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.Name()),
			tracer.StringAttr("llm.model", p.model),
			tracer.IntAttr("llm.messages", len(messages)),
		),
	)
	defer span.End()

	body, err := json.Marshal(ollamaChatRequest{Model: p.model, Messages: messages, Stream: false})
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := doJSONRequest(ctx, p.client, p.baseURL+"/api/chat", body, p.headers())
	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("%w: unmarshal response: %v", domain.ErrDecoding, err)
	}

	tracer.SetOK(span)
	p.logger.Debug("llm complete finished",
		"provider", p.Name(),
		"model", p.model,
		"chars", len(chatResp.Message.Content),
	)

	return chatResp.Message.Content, nil
}

// Stream implements domain.Provider. The response body is NDJSON; each line
// becomes one StreamResponse. The channel ends after the first done item.
func (p *OllamaProvider) Stream(ctx context.Context, messages []domain.Message) (<-chan domain.StreamResponse, error) {
	body, err := json.Marshal(ollamaChatRequest{Model: p.model, Messages: messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpResp, err := doStreamRequest(ctx, p.client, p.baseURL+"/api/chat", body, p.headers())
	if err != nil {
		return nil, err
	}

	ch := parseNDJSONStream(ctx, httpResp.Body, func(data []byte) (domain.StreamResponse, error) {
		var chunk ollamaChatResponse
		if err := json.Unmarshal(data, &chunk); err != nil {
			return domain.StreamResponse{}, fmt.Errorf("%w: %v", domain.ErrDecoding, err)
		}
		return domain.StreamResponse{Content: chunk.Message.Content, Done: chunk.Done}, nil
	})

	return ch, nil
}

// Name implements domain.Provider.
func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) headers() map[string]string {
	if p.authToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + p.authToken}
}

// ListModels returns the locally available Ollama models.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]OllamaModel, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range p.headers() {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, mapRequestError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(httpResp.StatusCode, respBody)
	}

	var resp struct {
		Models []OllamaModel `json:"models"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", domain.ErrDecoding, err)
	}

	return resp.Models, nil
}

// Healthy reports whether the Ollama daemon is reachable.
func (p *OllamaProvider) Healthy(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		return false
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return false
	}
	httpResp.Body.Close()

	return httpResp.StatusCode == http.StatusOK
}
