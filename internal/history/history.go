// Copyright 2017-2018 Denis Bernard <db047h@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package history implements a local, append-only audit log of
// translation runs, backed by SQLite through the pure-Go modernc.org
// driver.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/db47h/ways"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	started_at     TIMESTAMP NOT NULL,
	source_digest  TEXT NOT NULL,
	state_count    INTEGER NOT NULL,
	class_count    INTEGER NOT NULL,
	token_count    INTEGER NOT NULL,
	failure_count  INTEGER NOT NULL,
	ok             BOOLEAN NOT NULL,
	first_diagnostic TEXT
);
`

// Store is a handle to the run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ways: opening history database %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ways: creating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record appends one run to the history log. There is no corresponding
// update or delete: the log is append-only by design.
func (s *Store) Record(ctx context.Context, run ways.RunInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, source_digest, state_count, class_count, token_count, failure_count, ok, first_diagnostic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.StartedAt, run.SourceDigest,
		run.StateCount, run.ClassCount, run.TokenCount, run.FailureCount,
		run.OK, run.FirstDiagnostic,
	)
	if err != nil {
		return fmt.Errorf("ways: recording run: %w", err)
	}
	return nil
}

// Run is one row of the history log, as read back by Recent.
type Run struct {
	ID              uuid.UUID
	StartedAt       time.Time
	SourceDigest    string
	StateCount      int
	ClassCount      int
	TokenCount      int
	FailureCount    int
	OK              bool
	FirstDiagnostic string
}

// Recent returns the most recent n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, source_digest, state_count, class_count, token_count, failure_count, ok, first_diagnostic
		FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("ways: querying history: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r      Run
			idStr  string
			diagNS sql.NullString
		)
		if err := rows.Scan(&idStr, &r.StartedAt, &r.SourceDigest, &r.StateCount, &r.ClassCount, &r.TokenCount, &r.FailureCount, &r.OK, &diagNS); err != nil {
			return nil, fmt.Errorf("ways: scanning history row: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("ways: parsing run id: %w", err)
		}
		r.ID = id
		r.FirstDiagnostic = diagNS.String
		out = append(out, r)
	}
	return out, rows.Err()
}
