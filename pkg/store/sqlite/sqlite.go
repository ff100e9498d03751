// Package sqlite implements [store.Store] on a single SQLite file.
//
// Charts are stored as canonical family JSON in one table. The database is
// opened in WAL mode so the HTTP server can read while the CLI imports.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS charts (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	people         INTEGER NOT NULL,
	root_person_id TEXT NOT NULL DEFAULT '',
	created_at     INTEGER NOT NULL,
	data           BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS charts_created_at ON charts (created_at);
`

// Store is a SQLite-backed chart store.
type Store struct {
	db   *sql.DB
	Path string
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path. The parent directory is
// created when missing. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, Path: path}, nil
}

// Save stores data under a new id.
func (s *Store) Save(ctx context.Context, data *family.FamilyData, name string) (store.Chart, error) {
	c, err := store.NewChart(data, name)
	if err != nil {
		return store.Chart{}, err
	}
	body, err := family.Marshal(data)
	if err != nil {
		return store.Chart{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO charts (id, name, people, root_person_id, created_at, data) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.People, c.RootPersonID, c.CreatedAt.UnixMilli(), body)
	if err != nil {
		return store.Chart{}, fmt.Errorf("insert chart: %w", err)
	}
	return c, nil
}

// Get returns the stored snapshot.
func (s *Store) Get(ctx context.Context, id string) (*family.FamilyData, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM charts WHERE id = ?`, id).Scan(&body)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("query chart: %w", err)
	}
	return family.Unmarshal(body)
}

// List returns all charts, newest first.
func (s *Store) List(ctx context.Context) ([]store.Chart, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, people, root_person_id, created_at FROM charts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer rows.Close()

	var charts []store.Chart
	for rows.Next() {
		var (
			c       store.Chart
			created int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.People, &c.RootPersonID, &created); err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		c.CreatedAt = time.UnixMilli(created).UTC()
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

// Delete removes a chart.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	if n == 0 {
		return store.NotFound(id)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
