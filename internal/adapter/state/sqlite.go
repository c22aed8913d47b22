package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"devforge/internal/domain"
)

// Compile-time interface assertion.
var _ domain.StateStore = (*SQLiteStore)(nil)

// SQLiteStore implements domain.StateStore on a local SQLite database so
// state survives process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and runs
// the schema migration. Parent directories are created as needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// WAL mode for better concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS entities (
			entity     TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS snapshots (
			name       TEXT NOT NULL,
			entity     TEXT NOT NULL,
			value      TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (name, entity)
		);
		CREATE TABLE IF NOT EXISTS snapshot_names (
			name       TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, entity string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM entities WHERE entity = ?", entity,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewDomainError("state.Get", domain.ErrStateMissing, "entity: "+entity)
	}
	if err != nil {
		return nil, fmt.Errorf("query entity: %w", err)
	}
	return json.RawMessage(value), nil
}

func (s *SQLiteStore) Set(ctx context.Context, entity string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (entity, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(entity) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		entity, string(value), now(),
	)
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, entity string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entities WHERE entity = ?", entity)
	if err != nil {
		return false, fmt.Errorf("delete entity: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SQLiteStore) Entities(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT entity FROM entities ORDER BY entity")
}

func (s *SQLiteStore) Snapshot(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (name, entity, value, created_at)
		 SELECT ?, entity, value, ? FROM entities`, name, now(),
	); err != nil {
		return fmt.Errorf("copy snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_names (name, created_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET created_at = excluded.created_at`,
		name, now(),
	); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Restore(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin restore tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM snapshot_names WHERE name = ?", name,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if exists == 0 {
		return domain.NewDomainError("state.Restore", domain.ErrStateMissing, "snapshot: "+name)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM entities"); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entities (entity, value, updated_at)
		 SELECT entity, value, ? FROM snapshots WHERE name = ?`, now(), name,
	); err != nil {
		return fmt.Errorf("restore entities: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Snapshots(ctx context.Context) ([]string, error) {
	return s.names(ctx, "SELECT name FROM snapshot_names ORDER BY name")
}

func (s *SQLiteStore) names(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
