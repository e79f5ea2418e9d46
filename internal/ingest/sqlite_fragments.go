package ingest

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/structlink/api"
)

const fragmentsSchema = `
CREATE TABLE IF NOT EXISTS fragments (
	guid TEXT NOT NULL,
	fragment_guid TEXT NOT NULL,
	name TEXT,
	number TEXT
);
CREATE INDEX IF NOT EXISTS idx_fragment_guid ON fragments(fragment_guid COLLATE NOCASE);
`

// SQLiteFragments serves a fragment dataset from the fragments table of a
// SQLite database, opened read-only.
type SQLiteFragments struct {
	db   *sql.DB
	stmt *sql.Stmt
}

// OpenSQLiteFragments opens dbPath read-only and prepares the lookup query.
// A missing database is an error; nothing is created on disk.
func OpenSQLiteFragments(dbPath string) (*SQLiteFragments, error) {
	db, err := sql.Open("sqlite", readOnlyDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(4)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	stmt, err := db.Prepare(`
		SELECT guid, fragment_guid, COALESCE(name, ''), COALESCE(number, '')
		FROM fragments
		WHERE fragment_guid = ? COLLATE NOCASE
		ORDER BY rowid
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare fragments query: %w", err)
	}
	return &SQLiteFragments{db: db, stmt: stmt}, nil
}

// Fragments implements selection.FragmentSource.
func (s *SQLiteFragments) Fragments(guid string) ([]api.FragmentRecord, error) {
	if guid == "" {
		return nil, nil
	}
	rows, err := s.stmt.Query(guid)
	if err != nil {
		return nil, fmt.Errorf("query fragments %s: %w", guid, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []api.FragmentRecord
	for rows.Next() {
		var r api.FragmentRecord
		if err := rows.Scan(&r.GUID, &r.FragmentGUID, &r.Name, &r.Number); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close releases the prepared statement and the database handle.
func (s *SQLiteFragments) Close() error {
	_ = s.stmt.Close()
	return s.db.Close()
}

// readOnlyDSN builds a "file:" URI so the driver hands mode=ro to SQLite
// instead of stripping it.
func readOnlyDSN(dbPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dbPath), RawQuery: "mode=ro"}
	return u.String()
}

// WriteSQLiteFragments creates (or extends) the fragments table at dbPath and
// inserts records in one transaction.
func WriteSQLiteFragments(dbPath string, records []api.FragmentRecord) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	if _, err := db.Exec(fragmentsSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin fragments insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op if committed

	stmt, err := tx.Prepare("INSERT INTO fragments (guid, fragment_guid, name, number) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare fragments insert: %w", err)
	}
	defer func() { _ = stmt.Close() }() // safe to ignore

	for _, r := range records {
		if _, err := stmt.Exec(r.GUID, r.FragmentGUID, r.Name, r.Number); err != nil {
			return fmt.Errorf("insert fragment %s: %w", r.GUID, err)
		}
	}
	return tx.Commit()
}
