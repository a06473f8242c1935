// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists per-file rename outcomes to a SQLite database so
// past runs can be reviewed after the fact.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/namecle/pkg/types"
)

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Entry is one recorded outcome row.
type Entry struct {
	RunID     string
	Original  string
	NewName   string
	Title     string
	Authors   string
	Year      string
	Grade     string
	Citations *int
	ErrorKind string
	Detail    string
	RenamedAt time.Time
}

// Open opens or creates the history database at path, creating the schema
// and parent directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			original TEXT NOT NULL,
			new_name TEXT,
			title TEXT,
			authors TEXT,
			year TEXT,
			grade TEXT,
			citations INTEGER,
			error_kind TEXT,
			detail TEXT,
			renamed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Append records one outcome under the given run identifier.
func (s *Store) Append(runID string, o types.RenameOutcome) error {
	var title, authors, year, grade string
	var citations *int
	if o.Record != nil {
		title = o.Record.Title
		authors = o.Record.Authors
		year = o.Record.Year
		grade = string(o.Record.Grade)
		citations = o.Record.CitationCount
	}

	_, err := s.db.Exec(
		`INSERT INTO outcomes
			(run_id, original, new_name, title, authors, year, grade, citations, error_kind, detail, renamed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, o.OriginalName, o.NewName, title, authors, year, grade,
		citations, string(o.Err), o.Detail, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting outcome: %w", err)
	}
	return nil
}

// Recent returns the newest limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT run_id, original, new_name, title, authors, year, grade, citations, error_kind, detail, renamed_at
		 FROM outcomes ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var citations sql.NullInt64
		var renamedAt string
		if err := rows.Scan(&e.RunID, &e.Original, &e.NewName, &e.Title, &e.Authors,
			&e.Year, &e.Grade, &citations, &e.ErrorKind, &e.Detail, &renamedAt); err != nil {
			return nil, fmt.Errorf("scanning outcome row: %w", err)
		}
		if citations.Valid {
			c := int(citations.Int64)
			e.Citations = &c
		}
		if t, err := time.Parse(time.RFC3339, renamedAt); err == nil {
			e.RenamedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
