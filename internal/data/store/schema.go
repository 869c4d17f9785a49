package store

import (
	"database/sql"
	"fmt"
)

const SchemaVersion = 1

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS scans (
  root TEXT NOT NULL PRIMARY KEY,
  schema_version INTEGER NOT NULL,
  scanned_at_utc TEXT NOT NULL,
  declaration_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS declarations (
  root TEXT NOT NULL,
  position INTEGER NOT NULL,
  simple_name TEXT NOT NULL,
  namespace TEXT NOT NULL DEFAULT '',
  fqn TEXT NOT NULL,
  kind TEXT NOT NULL,
  source_path TEXT NOT NULL,
  decl_offset INTEGER NOT NULL,
  PRIMARY KEY (root, position),
  FOREIGN KEY (root) REFERENCES scans(root) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_declarations_fqn ON declarations(fqn);
CREATE INDEX IF NOT EXISTS idx_declarations_simple_name ON declarations(simple_name);
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
