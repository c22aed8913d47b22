package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devforge/internal/adapter/state"
	"devforge/internal/domain"
)

func stateRegistry(t *testing.T) (*Registry, domain.StateStore) {
	t.Helper()
	store := state.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	reg := NewRegistry(testLogger())
	for _, st := range StateTools(store) {
		reg.Register(st)
	}
	return reg, store
}

func call(t *testing.T, reg *Registry, name, args string) (json.RawMessage, error) {
	t.Helper()
	tl, err := reg.Get(name)
	require.NoError(t, err)
	return tl.Execute(context.Background(), json.RawMessage(args))
}

func TestStateToolsRegistered(t *testing.T) {
	reg, _ := stateRegistry(t)

	defs := reg.List()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"state_get", "state_set", "state_snapshot", "state_restore", "state_list"}, names)
}

func TestStateSetAndGet(t *testing.T) {
	reg, _ := stateRegistry(t)

	out, err := call(t, reg, "state_set", `{"entity":"user","value":{"name":"ada"}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))

	out, err = call(t, reg, "state_get", `{"entity":"user"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada"}`, string(out))
}

func TestStateGetMissing(t *testing.T) {
	reg, _ := stateRegistry(t)

	_, err := call(t, reg, "state_get", `{"entity":"ghost"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStateMissing)
}

func TestStateGetRejectsBadArguments(t *testing.T) {
	reg, _ := stateRegistry(t)

	_, err := call(t, reg, "state_get", `{"entity":42}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrToolFailure)
}

func TestStateSnapshotRoundTrip(t *testing.T) {
	reg, _ := stateRegistry(t)

	_, err := call(t, reg, "state_set", `{"entity":"counter","value":1}`)
	require.NoError(t, err)

	_, err = call(t, reg, "state_snapshot", `{"name":"before"}`)
	require.NoError(t, err)

	_, err = call(t, reg, "state_set", `{"entity":"counter","value":99}`)
	require.NoError(t, err)

	_, err = call(t, reg, "state_restore", `{"name":"before"}`)
	require.NoError(t, err)

	out, err := call(t, reg, "state_get", `{"entity":"counter"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(out))

	_, err = call(t, reg, "state_restore", `{"name":"never"}`)
	assert.ErrorIs(t, err, domain.ErrStateMissing)
}

func TestStateList(t *testing.T) {
	reg, _ := stateRegistry(t)

	out, err := call(t, reg, "state_list", `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entities":[],"snapshots":[]}`, string(out))

	_, err = call(t, reg, "state_set", `{"entity":"b","value":1}`)
	require.NoError(t, err)
	_, err = call(t, reg, "state_set", `{"entity":"a","value":2}`)
	require.NoError(t, err)
	_, err = call(t, reg, "state_snapshot", `{"name":"s1"}`)
	require.NoError(t, err)

	out, err = call(t, reg, "state_list", `{}`)
	require.NoError(t, err)

	var listed struct {
		Entities  []string `json:"entities"`
		Snapshots []string `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(out, &listed))
	assert.Equal(t, []string{"a", "b"}, listed.Entities)
	assert.Equal(t, []string{"s1"}, listed.Snapshots)
}
