package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"devforge/internal/domain"
)

// StateTools builds the built-in tools that expose the session state
// store to MCP clients.
func StateTools(store domain.StateStore) []domain.Tool {
	return []domain.Tool{
		stateGetTool(store),
		stateSetTool(store),
		stateSnapshotTool(store),
		stateRestoreTool(store),
		stateListTool(store),
	}
}

func stateGetTool(store domain.StateStore) domain.Tool {
	return MustFuncTool(domain.ToolDefinition{
		Name:        "state_get",
		Description: "Read the JSON document stored for an entity.",
		Parameters: domain.ParameterSchema{
			Type: "object",
			Properties: json.RawMessage(`{
				"entity": {"type": "string", "description": "Entity name to read."}
			}`),
			Required: []string{"entity"},
		},
	}, func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		var p struct {
			Entity string `json:"entity"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		return store.Get(ctx, p.Entity)
	})
}

func stateSetTool(store domain.StateStore) domain.Tool {
	return MustFuncTool(domain.ToolDefinition{
		Name:        "state_set",
		Description: "Store or replace the JSON document for an entity.",
		Parameters: domain.ParameterSchema{
			Type: "object",
			Properties: json.RawMessage(`{
				"entity": {"type": "string", "description": "Entity name to write."},
				"value":  {"description": "JSON document to store (any JSON value)."}
			}`),
			Required: []string{"entity", "value"},
		},
	}, func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		var p struct {
			Entity string          `json:"entity"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		if err := store.Set(ctx, p.Entity, p.Value); err != nil {
			return nil, err
		}
		return okResult()
	})
}

func stateSnapshotTool(store domain.StateStore) domain.Tool {
	return MustFuncTool(domain.ToolDefinition{
		Name:        "state_snapshot",
		Description: "Capture the current state under a snapshot name.",
		Parameters: domain.ParameterSchema{
			Type: "object",
			Properties: json.RawMessage(`{
				"name": {"type": "string", "description": "Snapshot name."}
			}`),
			Required: []string{"name"},
		},
	}, func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		var p struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		if err := store.Snapshot(ctx, p.Name); err != nil {
			return nil, err
		}
		return okResult()
	})
}

func stateRestoreTool(store domain.StateStore) domain.Tool {
	return MustFuncTool(domain.ToolDefinition{
		Name:        "state_restore",
		Description: "Replace the current state with a named snapshot.",
		Parameters: domain.ParameterSchema{
			Type: "object",
			Properties: json.RawMessage(`{
				"name": {"type": "string", "description": "Snapshot name to restore."}
			}`),
			Required: []string{"name"},
		},
	}, func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		var p struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		if err := store.Restore(ctx, p.Name); err != nil {
			return nil, err
		}
		return okResult()
	})
}

func stateListTool(store domain.StateStore) domain.Tool {
	return MustFuncTool(domain.ToolDefinition{
		Name:        "state_list",
		Description: "List stored entities and snapshot names.",
		Parameters: domain.ParameterSchema{
			Type:       "object",
			Properties: json.RawMessage(`{}`),
		},
	}, func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
		entities, err := store.Entities(ctx)
		if err != nil {
			return nil, err
		}
		snapshots, err := store.Snapshots(ctx)
		if err != nil {
			return nil, err
		}
		if entities == nil {
			entities = []string{}
		}
		if snapshots == nil {
			snapshots = []string{}
		}
		return json.Marshal(struct {
			Entities  []string `json:"entities"`
			Snapshots []string `json:"snapshots"`
		}{Entities: entities, Snapshots: snapshots})
	})
}

func okResult() (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}
