package state

import (
	"devforge/internal/domain"
	"devforge/internal/infra/config"
)

// New builds the store selected by configuration: SQLite-backed when
// persistence is enabled, in-memory otherwise.
func New(cfg config.StateConfig) (domain.StateStore, error) {
	if cfg.Persist {
		return NewSQLiteStore(cfg.Path)
	}
	return NewMemoryStore(), nil
}
