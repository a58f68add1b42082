package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"siteforge/pkg/domain"
)

// SQLiteStore persists snapshots in a single SQLite table as JSON blobs.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) a catalog database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "siteforge.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sites (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sites table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Save stores a snapshot under the name, replacing any previous version.
func (s *SQLiteStore) Save(ctx context.Context, name string, site domain.Site) error {
	data, err := encode(site)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sites(name, payload, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert site %q: %w", name, err)
	}
	return nil
}

// Load retrieves and revalidates a snapshot.
func (s *SQLiteStore) Load(ctx context.Context, name string) (domain.Site, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM sites WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Site{}, ErrNotFound
	}
	if err != nil {
		return domain.Site{}, fmt.Errorf("select site %q: %w", name, err)
	}
	return decode(payload)
}

// List returns all entries ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, length(payload), updated_at FROM sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select sites: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var entry Entry
		var updated string
		if err := rows.Scan(&entry.Name, &entry.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			entry.UpdatedAt = ts
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Delete removes a snapshot, reporting whether it existed.
func (s *SQLiteStore) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete site %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
