package queue

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

const versionTableSQL = `CREATE TABLE IF NOT EXISTS schema_version (
    table_name TEXT PRIMARY KEY,
    version INTEGER NOT NULL
)`

func schemaScript(mode Mode) (string, error) {
	data, err := schemaFS.ReadFile("schema/" + mode.Table() + ".sql")
	if err != nil {
		return "", fmt.Errorf("read schema for %s: %w", mode.Table(), err)
	}
	return string(data), nil
}

func (s *Store) initSchema(ctx context.Context) error {
	table := s.mode.Table()

	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?", table,
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check %s table: %w", table, err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}
	return s.verifySchema(ctx)
}

func (s *Store) createSchema(ctx context.Context) error {
	script, err := schemaScript(s.mode)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, versionTableSQL); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO schema_version (table_name, version) VALUES (?, ?)",
		s.mode.Table(), schemaVersion,
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	s.logger.Info("queue schema created", "table", s.mode.Table(), "schema_version", schemaVersion)
	return nil
}

// verifySchema checks the recorded version of an existing table. Tables
// without a version row predate versioning and are adopted as current.
func (s *Store) verifySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, versionTableSQL); err != nil {
		return fmt.Errorf("ensure schema_version: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx,
		"SELECT version FROM schema_version WHERE table_name = ?", s.mode.Table(),
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_version (table_name, version) VALUES (?, ?)",
			s.mode.Table(), schemaVersion,
		); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: table %s has version %d, expected %d (delete the database to adopt the new schema)",
			ErrSchemaMismatch, s.mode.Table(), version, schemaVersion)
	}
	return nil
}
