// Package cache persists blame snapshots in a SQLite database so re-opening
// an editor on an unchanged revision skips the blame run.
package cache

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/massimiliano76/nuclide/blame"
)

// SQLiteStore implements blame.Store over a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens/creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("cache database path required")
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		path TEXT NOT NULL,
		revision TEXT NOT NULL,
		line INTEGER NOT NULL,
		author TEXT NOT NULL,
		changeset TEXT NOT NULL DEFAULT '',
		PRIMARY KEY(path, revision, line)
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_path_rev ON snapshots(path, revision);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get loads the snapshot stored for (path, revision). The second result is
// false on a cache miss. Empty snapshots are never cached, so zero rows
// always mean a miss.
func (s *SQLiteStore) Get(ctx context.Context, path, revision string) (blame.Snapshot, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT line, author, changeset FROM snapshots WHERE path = ? AND revision = ?",
		path, revision)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	snapshot := make(blame.Snapshot)
	for rows.Next() {
		var line int
		var author, changeset string
		if err := rows.Scan(&line, &author, &changeset); err != nil {
			return nil, false, err
		}
		snapshot[line] = blame.Attribution{Author: author, Changeset: changeset}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(snapshot) == 0 {
		return nil, false, nil
	}
	return snapshot, true, nil
}

// Put replaces the stored snapshot for (path, revision).
func (s *SQLiteStore) Put(ctx context.Context, path, revision string, snapshot blame.Snapshot) error {
	if len(snapshot) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshots WHERE path = ? AND revision = ?", path, revision); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO snapshots(path, revision, line, author, changeset) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for line, attr := range snapshot {
		if _, err := stmt.ExecContext(ctx, path, revision, line, attr.Author, attr.Changeset); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Prune drops every snapshot not belonging to the given revision, keeping the
// database from growing across history.
func (s *SQLiteStore) Prune(ctx context.Context, keepRevision string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE revision != ?", keepRevision)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
