// Package mcp implements the Model Context Protocol server side: a
// newline-delimited JSON-RPC 2.0 loop over an injected reader/writer
// pair, dispatching tool calls against a registry.
package mcp

import (
	"bytes"
	"encoding/json"

	"devforge/internal/domain"
)

// ProtocolVersion is the MCP protocol revision this server speaks.
const ProtocolVersion = "2024-11-05"

// jsonRPCVersion is the only accepted jsonrpc field value.
const jsonRPCVersion = "2.0"

// JSON-RPC error codes. CodeServerNotInitialized is the MCP-specific
// code for requests arriving before initialize.
const (
	CodeParseError           = -32700
	CodeInvalidRequest       = -32600
	CodeMethodNotFound       = -32601
	CodeInvalidParams        = -32602
	CodeInternalError        = -32603
	CodeServerNotInitialized = -32002
)

// Request is an incoming JSON-RPC request or notification. ID keeps its
// original JSON form so responses echo it byte for byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no usable id: the
// field is absent or an explicit null. Notifications never get replies.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0 || bytes.Equal(r.ID, nullID)
}

// Response is an outgoing JSON-RPC response. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

var nullID = json.RawMessage("null")

func resultResponse(id json.RawMessage, result any) Response {
	return Response{JSONRPC: jsonRPCVersion, ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) Response {
	if len(id) == 0 {
		id = nullID
	}
	return Response{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}}
}

// --- MCP result payloads ---

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    capabilities `json:"capabilities"`
	ServerInfo      serverInfo   `json:"serverInfo"`
}

type capabilities struct {
	Tools struct{} `json:"tools"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type listToolsResult struct {
	Tools []domain.ToolDefinition `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type callToolResult struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"isError"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textResult(text string, isError bool) callToolResult {
	return callToolResult{
		Content: []contentBlock{{Type: "text", Text: text}},
		IsError: isError,
	}
}

// renderToolOutput turns a tool's raw JSON result into the text block
// body: JSON strings are unquoted, everything else stays compact JSON.
func renderToolOutput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
