package domain

import (
	"context"
	"encoding/json"
)

// StateStore holds named JSON documents for the session and supports
// point-in-time snapshots of the whole set. Implementations must be safe
// for concurrent use.
type StateStore interface {
	// Get returns the document for entity, or ErrStateMissing.
	Get(ctx context.Context, entity string) (json.RawMessage, error)
	// Set stores or replaces the document for entity.
	Set(ctx context.Context, entity string, value json.RawMessage) error
	// Delete removes entity and reports whether it existed.
	Delete(ctx context.Context, entity string) (bool, error)
	// Entities returns all stored entity names, sorted.
	Entities(ctx context.Context) ([]string, error)
	// Snapshot captures the current document set under name, replacing
	// any snapshot with the same name.
	Snapshot(ctx context.Context, name string) error
	// Restore replaces the document set with the named snapshot, or
	// returns ErrStateMissing when no such snapshot exists.
	Restore(ctx context.Context, name string) error
	// Snapshots returns all snapshot names, sorted.
	Snapshots(ctx context.Context) ([]string, error)
	// Close releases any underlying resources.
	Close() error
}
