package domain

import (
	"context"
	"encoding/json"
)

// ParameterSchema is the minimal JSON-Schema-shaped record describing a
// tool's arguments. Properties holds the raw properties object; every
// entry in Required names a key of Properties.
type ParameterSchema struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties,omitempty"`
	Required   []string        `json:"required,omitempty"`
}

// ToolDefinition is a tool's self-description, advertised to MCP clients.
// Immutable after registration.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"inputSchema"`
}

// Tool is the interface every tool must implement.
type Tool interface {
	// Definition returns the tool's self-description. Name must be non-empty.
	Definition() ToolDefinition

	// Execute runs the tool against a JSON arguments object and returns a
	// JSON result. Argument validation is the tool's responsibility, not
	// the registry's.
	Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

	// Validate reports whether params conform to the tool's parameter schema.
	Validate(params json.RawMessage) bool
}
