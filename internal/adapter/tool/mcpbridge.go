package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"devforge/internal/domain"
	"devforge/internal/infra/config"
)

// mcpCallTimeout is the default per-call timeout for bridged tool execution.
const mcpCallTimeout = 30 * time.Second

// MCPBridge connects to external MCP servers and exposes their tools as
// domain.Tool instances under "<server>_<tool>" names.
type MCPBridge struct {
	servers []mcpServerConn
	tools   []domain.Tool
	logger  *slog.Logger
}

type mcpServerConn struct {
	name   string
	client mcpClient
}

// mcpClient abstracts the MCP client interface for testability.
type mcpClient interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// NewMCPBridge connects to all configured servers and discovers their
// tools. A connect failure tears down the already-connected servers.
func NewMCPBridge(ctx context.Context, servers []config.MCPServer, logger *slog.Logger) (*MCPBridge, error) {
	b := &MCPBridge{logger: logger}

	for _, srv := range servers {
		conn, err := b.connectServer(ctx, srv)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("mcp server %q: %w", srv.Name, err)
		}
		b.servers = append(b.servers, *conn)
	}

	if err := b.discoverTools(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("discover tools: %w", err)
	}

	return b, nil
}

// newMCPBridgeWithClients creates a bridge with pre-built clients (for testing).
func newMCPBridgeWithClients(ctx context.Context, servers []mcpServerConn, logger *slog.Logger) (*MCPBridge, error) {
	b := &MCPBridge{servers: servers, logger: logger}
	if err := b.discoverTools(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MCPBridge) connectServer(ctx context.Context, srv config.MCPServer) (*mcpServerConn, error) {
	var c mcpClient
	var err error

	switch srv.Transport {
	case "stdio":
		c, err = mcpclient.NewStdioMCPClient(srv.Command, envSlice(srv.Env), srv.Args...)
		if err != nil {
			return nil, fmt.Errorf("create stdio client: %w", err)
		}
	case "http":
		t, tErr := transport.NewStreamableHTTP(srv.URL)
		if tErr != nil {
			return nil, fmt.Errorf("create http transport: %w", tErr)
		}
		httpClient := mcpclient.NewClient(t)
		if err = httpClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("start http client: %w", err)
		}
		c = httpClient
	default:
		return nil, fmt.Errorf("unsupported transport %q", srv.Transport)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "devforge",
		Version: config.Version,
	}

	if ic, ok := c.(interface {
		Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	}); ok {
		if _, err = ic.Initialize(ctx, initReq); err != nil {
			c.Close()
			return nil, domain.WrapOp("initialize", err)
		}
	}

	b.logger.Info("mcp server connected", "name", srv.Name, "transport", srv.Transport)

	return &mcpServerConn{name: srv.Name, client: c}, nil
}

func (b *MCPBridge) discoverTools(ctx context.Context) error {
	var errs []string
	successCount := 0

	for _, srv := range b.servers {
		result, err := srv.client.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			b.logger.Warn("mcp server discovery failed, skipping",
				"server", srv.name,
				"error", err,
			)
			errs = append(errs, fmt.Sprintf("%s: %v", srv.name, err))
			continue
		}

		for _, t := range result.Tools {
			adapter := newMCPToolAdapter(srv.name, srv.client, t, b.logger)
			b.tools = append(b.tools, adapter)
			b.logger.Debug("mcp tool discovered",
				"server", srv.name,
				"tool", t.Name,
				"full_name", adapter.Definition().Name)
		}

		b.logger.Info("mcp tools discovered", "server", srv.name, "count", len(result.Tools))
		successCount++
	}

	// Only fail if ALL servers failed.
	if successCount == 0 && len(errs) > 0 {
		return fmt.Errorf("all mcp servers failed discovery: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Tools returns all discovered tools.
func (b *MCPBridge) Tools() []domain.Tool {
	return b.tools
}

// RegisterAll registers every discovered tool with reg.
func (b *MCPBridge) RegisterAll(reg *Registry) {
	for _, t := range b.tools {
		reg.Register(t)
	}
}

// Close shuts down all server connections.
func (b *MCPBridge) Close() {
	for _, srv := range b.servers {
		if err := srv.client.Close(); err != nil {
			b.logger.Warn("mcp server close error", "server", srv.name, "error", err)
		}
	}
}

// mcpToolAdapter wraps a single remote MCP tool as a domain.Tool.
type mcpToolAdapter struct {
	serverName string
	client     mcpClient
	mcpTool    mcp.Tool
	def        domain.ToolDefinition
	logger     *slog.Logger
}

// Compile-time interface assertion.
var _ domain.Tool = (*mcpToolAdapter)(nil)

func newMCPToolAdapter(serverName string, client mcpClient, t mcp.Tool, logger *slog.Logger) *mcpToolAdapter {
	desc := t.Description
	if desc == "" {
		desc = fmt.Sprintf("MCP tool %q from server %q", t.Name, serverName)
	}

	def := domain.ToolDefinition{
		Name:        sanitizeName(serverName) + "_" + sanitizeName(t.Name),
		Description: desc,
		Parameters:  domain.ParameterSchema{Type: "object"},
	}
	if t.InputSchema.Properties != nil {
		if raw, err := json.Marshal(t.InputSchema.Properties); err == nil {
			def.Parameters.Properties = raw
		}
	}
	def.Parameters.Required = t.InputSchema.Required

	return &mcpToolAdapter{
		serverName: serverName,
		client:     client,
		mcpTool:    t,
		def:        def,
		logger:     logger,
	}
}

func (a *mcpToolAdapter) Definition() domain.ToolDefinition { return a.def }

// Validate only checks for well-formed JSON; argument semantics are the
// remote server's to enforce.
func (a *mcpToolAdapter) Validate(params json.RawMessage) bool {
	return len(params) == 0 || json.Valid(params)
}

func (a *mcpToolAdapter) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var args map[string]any
	if len(params) > 0 && string(params) != "null" {
		if err := json.Unmarshal(params, &args); err != nil {
			return nil, domain.NewDomainError("tool."+a.def.Name, domain.ErrToolFailure,
				"invalid arguments: "+err.Error())
		}
	}

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = a.mcpTool.Name
	callReq.Params.Arguments = args

	a.logger.Debug("mcp tool call",
		"server", a.serverName,
		"tool", a.mcpTool.Name,
		"full_name", a.def.Name)

	callCtx, cancel := context.WithTimeout(ctx, mcpCallTimeout)
	defer cancel()

	result, err := a.client.CallTool(callCtx, callReq)
	if err != nil {
		return nil, domain.NewDomainError("tool."+a.def.Name, domain.ErrToolFailure, err.Error())
	}

	content := extractMCPContent(result)
	if result.IsError {
		return nil, domain.NewDomainError("tool."+a.def.Name, domain.ErrToolFailure, content)
	}

	return json.Marshal(content)
}

// extractMCPContent flattens a CallToolResult to a single string.
func extractMCPContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if data, err := json.Marshal(v); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// sanitizeName replaces characters that are not valid in tool names.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// envSlice converts a map of env vars to KEY=VALUE form.
func envSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
