package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"siteforge/pkg/domain"
)

const (
	postgresDriver = "pgx"
	// defaultPostgresDSN matches the local development compose setup.
	defaultPostgresDSN = "postgres://localhost/siteforge?sslmode=disable"
)

var pgOpen = sql.Open

// PostgresStore persists snapshots in a Postgres table as JSON blobs.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens a catalog against the given DSN (falls back to a local
// default) and ensures the snapshot table exists.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := pgOpen(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sites (
		name TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sites table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Save stores a snapshot under the name, replacing any previous version.
func (s *PostgresStore) Save(ctx context.Context, name string, site domain.Site) error {
	data, err := encode(site)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sites(name, payload, updated_at) VALUES($1, $2, $3)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert site %q: %w", name, err)
	}
	return nil
}

// Load retrieves and revalidates a snapshot.
func (s *PostgresStore) Load(ctx context.Context, name string) (domain.Site, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM sites WHERE name = $1`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Site{}, ErrNotFound
	}
	if err != nil {
		return domain.Site{}, fmt.Errorf("select site %q: %w", name, err)
	}
	return decode(payload)
}

// List returns all entries ordered by name.
func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, octet_length(payload), updated_at FROM sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select sites: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Name, &entry.Size, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Delete removes a snapshot, reporting whether it existed.
func (s *PostgresStore) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE name = $1`, name)
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
func (s *PostgresStore) Close() error { return s.db.Close() }
