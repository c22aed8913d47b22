package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devforge/internal/domain"
)

// mockMCPClient implements mcpClient for testing.
type mockMCPClient struct {
	tools    []mcp.Tool
	callFunc func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	closed   bool
	listErr  error
}

func (m *mockMCPClient) ListTools(_ context.Context, _ mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return &mcp.ListToolsResult{Tools: m.tools}, nil
}

func (m *mockMCPClient) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if m.callFunc != nil {
		return m.callFunc(ctx, req)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf("called %s", req.Params.Name)),
		},
	}, nil
}

func (m *mockMCPClient) Close() error {
	m.closed = true
	return nil
}

func TestMCPBridgeDiscoverTools(t *testing.T) {
	mock := &mockMCPClient{
		tools: []mcp.Tool{
			{Name: "read_file", Description: "Read a file"},
			{Name: "write_file", Description: "Write a file"},
		},
	}

	bridge, err := newMCPBridgeWithClients(context.Background(), []mcpServerConn{
		{name: "filesystem", client: mock},
	}, testLogger())
	require.NoError(t, err)
	defer bridge.Close()

	tools := bridge.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "filesystem_read_file", tools[0].Definition().Name)
	assert.Equal(t, "filesystem_write_file", tools[1].Definition().Name)
}

func TestMCPBridgeRegisterAll(t *testing.T) {
	mock := &mockMCPClient{
		tools: []mcp.Tool{{Name: "search", Description: "Search things"}},
	}

	bridge, err := newMCPBridgeWithClients(context.Background(), []mcpServerConn{
		{name: "web", client: mock},
	}, testLogger())
	require.NoError(t, err)
	defer bridge.Close()

	reg := NewRegistry(testLogger())
	bridge.RegisterAll(reg)

	got, err := reg.Get("web_search")
	require.NoError(t, err)

	out, err := got.Execute(context.Background(), json.RawMessage(`{"q":"golang"}`))
	require.NoError(t, err)
	assert.Equal(t, `"called search"`, string(out))
}

func TestMCPBridgeCallError(t *testing.T) {
	mock := &mockMCPClient{
		tools: []mcp.Tool{{Name: "flaky"}},
		callFunc: func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("connection reset")
		},
	}

	bridge, err := newMCPBridgeWithClients(context.Background(), []mcpServerConn{
		{name: "remote", client: mock},
	}, testLogger())
	require.NoError(t, err)
	defer bridge.Close()

	_, err = bridge.Tools()[0].Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolFailure)
}

func TestMCPBridgeRemoteIsError(t *testing.T) {
	mock := &mockMCPClient{
		tools: []mcp.Tool{{Name: "strict"}},
		callFunc: func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{mcp.NewTextContent("bad arguments")},
			}, nil
		},
	}

	bridge, err := newMCPBridgeWithClients(context.Background(), []mcpServerConn{
		{name: "remote", client: mock},
	}, testLogger())
	require.NoError(t, err)
	defer bridge.Close()

	_, err = bridge.Tools()[0].Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolFailure)
	assert.Contains(t, err.Error(), "bad arguments")
}

func TestMCPBridgePartialDiscoveryFailure(t *testing.T) {
	good := &mockMCPClient{tools: []mcp.Tool{{Name: "ok"}}}
	bad := &mockMCPClient{listErr: errors.New("unreachable")}

	bridge, err := newMCPBridgeWithClients(context.Background(), []mcpServerConn{
		{name: "up", client: good},
		{name: "down", client: bad},
	}, testLogger())
	require.NoError(t, err)
	defer bridge.Close()

	require.Len(t, bridge.Tools(), 1)
	assert.Equal(t, "up_ok", bridge.Tools()[0].Definition().Name)
}

func TestMCPBridgeAllDiscoveryFailed(t *testing.T) {
	bad := &mockMCPClient{listErr: errors.New("unreachable")}

	_, err := newMCPBridgeWithClients(context.Background(), []mcpServerConn{
		{name: "down", client: bad},
	}, testLogger())
	require.Error(t, err)
}

func TestMCPBridgeCloseClosesClients(t *testing.T) {
	mock := &mockMCPClient{tools: []mcp.Tool{{Name: "x"}}}
	bridge, err := newMCPBridgeWithClients(context.Background(), []mcpServerConn{
		{name: "s", client: mock},
	}, testLogger())
	require.NoError(t, err)

	bridge.Close()
	assert.True(t, mock.closed)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "my_server", sanitizeName("my-server"))
	assert.Equal(t, "tool_name", sanitizeName("tool.name"))
	assert.Equal(t, "plain_01", sanitizeName("plain_01"))
}
