package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"devforge/internal/domain"
)

// Compile-time interface assertion.
var _ domain.Tool = (*FuncTool)(nil)

// ExecuteFunc is the body of a FuncTool.
type ExecuteFunc func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// FuncTool adapts a function into a domain.Tool with a compiled JSON
// Schema backing Validate. Built-in tools are all FuncTools.
type FuncTool struct {
	def    domain.ToolDefinition
	schema *jsonschema.Schema
	fn     ExecuteFunc
}

// NewFuncTool builds a tool from a definition and a body. The parameter
// schema is compiled once here; a schema that fails to compile is a
// programming error in the definition.
func NewFuncTool(def domain.ToolDefinition, fn ExecuteFunc) (*FuncTool, error) {
	compiled, err := compileSchema(def)
	if err != nil {
		return nil, fmt.Errorf("tool %q: %w", def.Name, err)
	}
	return &FuncTool{def: def, schema: compiled, fn: fn}, nil
}

// MustFuncTool is NewFuncTool for statically known definitions.
func MustFuncTool(def domain.ToolDefinition, fn ExecuteFunc) *FuncTool {
	t, err := NewFuncTool(def, fn)
	if err != nil {
		panic(err)
	}
	return t
}

func compileSchema(def domain.ToolDefinition) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(def.Parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// Definition implements domain.Tool.
func (t *FuncTool) Definition() domain.ToolDefinition { return t.def }

// Validate implements domain.Tool against the compiled schema.
func (t *FuncTool) Validate(params json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(params, &v); err != nil {
		return false
	}
	return t.schema.Validate(v) == nil
}

// Execute implements domain.Tool. Arguments are validated before the
// body runs; invalid arguments fail with ErrToolFailure.
func (t *FuncTool) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	var v any
	if err := json.Unmarshal(params, &v); err != nil {
		return nil, domain.NewDomainError("tool."+t.def.Name, domain.ErrToolFailure,
			"invalid JSON arguments: "+err.Error())
	}
	if err := t.schema.Validate(v); err != nil {
		return nil, domain.NewDomainError("tool."+t.def.Name, domain.ErrToolFailure,
			"schema validation failed: "+err.Error())
	}

	return t.fn(ctx, params)
}
