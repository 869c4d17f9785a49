package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"phpnav/internal/scanner"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// ErrNoScan is returned when the store has no persisted scan for a root.
var ErrNoScan = errors.New("no persisted scan for root")

// Store persists scan results per root path so repeated invocations can serve
// lookups without walking the tree again. Staleness stays explicit: rows carry
// the scan timestamp and the caller decides whether to rescan.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts when watch mode and one-shot
	// invocations overlap.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveScan replaces the persisted declarations for root. Positions record the
// scan order so a restored index reproduces last-write-wins collisions.
func (s *Store) SaveScan(root string, scannedAt time.Time, decls []scanner.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	root = strings.TrimSpace(root)
	if root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if scannedAt.IsZero() {
		scannedAt = time.Now().UTC()
	}

	return s.withRetry("save scan", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM declarations WHERE root = ?`, root); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO scans (root, schema_version, scanned_at_utc, declaration_count)
VALUES (?, ?, ?, ?)
ON CONFLICT(root) DO UPDATE SET
  schema_version=excluded.schema_version,
  scanned_at_utc=excluded.scanned_at_utc,
  declaration_count=excluded.declaration_count
`, root, SchemaVersion, scannedAt.UTC().Format(time.RFC3339Nano), len(decls)); err != nil {
			_ = tx.Rollback()
			return err
		}

		for i, d := range decls {
			if _, err := tx.Exec(`
INSERT INTO declarations (root, position, simple_name, namespace, fqn, kind, source_path, decl_offset)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, root, i, d.SimpleName, d.Namespace, d.FQN, string(d.Kind), d.SourcePath, d.Offset); err != nil {
				_ = tx.Rollback()
				return err
			}
		}

		return tx.Commit()
	})
}

// LoadScan returns the persisted declarations for root in their original scan
// order, plus the scan timestamp. Returns ErrNoScan when the root has never
// been persisted.
func (s *Store) LoadScan(root string) ([]scanner.Declaration, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root = strings.TrimSpace(root)

	var (
		tsRaw string
		count int
	)
	err := s.withRetry("load scan", func() error {
		return s.db.QueryRow(
			`SELECT scanned_at_utc, declaration_count FROM scans WHERE root = ?`, root,
		).Scan(&tsRaw, &count)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoScan
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	scannedAt, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse scan timestamp %q: %w", tsRaw, err)
	}

	var rows *sql.Rows
	err = s.withRetry("load declarations", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT simple_name, namespace, fqn, kind, source_path, decl_offset
FROM declarations
WHERE root = ?
ORDER BY position ASC
`, root)
		return qErr
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	decls := make([]scanner.Declaration, 0, count)
	for rows.Next() {
		var (
			d    scanner.Declaration
			kind string
		)
		if err := rows.Scan(&d.SimpleName, &d.Namespace, &d.FQN, &kind, &d.SourcePath, &d.Offset); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan declaration row: %w", err)
		}
		d.Kind = scanner.Kind(kind)
		decls = append(decls, d)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate declaration rows: %w", err)
	}

	return decls, scannedAt.UTC(), nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
