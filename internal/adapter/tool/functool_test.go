package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devforge/internal/domain"
)

func echoDefinition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "echo",
		Description: "echoes the text argument",
		Parameters: domain.ParameterSchema{
			Type: "object",
			Properties: json.RawMessage(`{
				"text": {"type": "string"}
			}`),
			Required: []string{"text"},
		},
	}
}

func TestFuncToolValidate(t *testing.T) {
	ft, err := NewFuncTool(echoDefinition(), func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		return params, nil
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		params string
		want   bool
	}{
		{name: "valid", params: `{"text":"hi"}`, want: true},
		{name: "missing required", params: `{}`, want: false},
		{name: "wrong type", params: `{"text":42}`, want: false},
		{name: "not json", params: `{`, want: false},
		{name: "extra fields allowed", params: `{"text":"hi","more":1}`, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ft.Validate(json.RawMessage(tt.params)))
		})
	}
}

func TestFuncToolExecuteValidates(t *testing.T) {
	ft := MustFuncTool(echoDefinition(), func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		var p struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return json.Marshal(p.Text)
	})

	out, err := ft.Execute(context.Background(), json.RawMessage(`{"text":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(out))

	_, err = ft.Execute(context.Background(), json.RawMessage(`{"text":7}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolFailure)
}

func TestFuncToolEmptyParams(t *testing.T) {
	def := domain.ToolDefinition{
		Name:       "noarg",
		Parameters: domain.ParameterSchema{Type: "object"},
	}
	ft := MustFuncTool(def, func(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(`"ran"`), nil
	})

	out, err := ft.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, `"ran"`, string(out))
}

func TestNewFuncToolBadSchema(t *testing.T) {
	def := domain.ToolDefinition{
		Name: "broken",
		Parameters: domain.ParameterSchema{
			Type:       "object",
			Properties: json.RawMessage(`{"x": {"type": "no-such-type"}}`),
		},
	}
	_, err := NewFuncTool(def, func(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
