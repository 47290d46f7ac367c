// Package loader streams generated SQL scripts into a reference database.
//
// The import scripts in this project emit plain SQL text; the loader is the
// sink that executes it. Every load runs inside one transaction and is
// recorded in an import_runs table with a run ID and the BLAKE3 hash of the
// script, so a populated database can say exactly which script versions
// built it.
package loader

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mossdeep/dexkit/core/errors"
	"github.com/mossdeep/dexkit/internal/blobio"
	"github.com/mossdeep/dexkit/internal/logging"
)

const provenanceSchema = `
CREATE TABLE IF NOT EXISTS import_runs (
	id         TEXT PRIMARY KEY,
	script     TEXT NOT NULL,
	blake3     TEXT NOT NULL,
	statements INTEGER NOT NULL,
	loaded_at  TEXT NOT NULL
)`

// Result summarizes one completed load.
type Result struct {
	RunID      string
	Statements int
	ScriptHash string
}

// Loader executes SQL scripts against a database.
type Loader struct {
	db *sql.DB
}

// New creates a Loader for the given database handle.
func New(db *sql.DB) *Loader {
	return &Loader{db: db}
}

// Load splits script into statements and executes them in one transaction.
// name identifies the script in logs and in the provenance table. The whole
// load is rolled back if any statement fails.
func (l *Loader) Load(ctx context.Context, script []byte, name string) (*Result, error) {
	statements := SplitStatements(string(script))
	if len(statements) == 0 {
		return nil, errors.NewParse("SQL", name, "script contains no statements")
	}

	if _, err := l.db.ExecContext(ctx, provenanceSchema); err != nil {
		return nil, errors.Wrap(err, "creating import_runs table")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning import transaction")
	}
	defer tx.Rollback()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, errors.Wrapf(err, "statement %d of %s", i+1, name)
		}
	}

	res := &Result{
		RunID:      uuid.NewString(),
		Statements: len(statements),
		ScriptHash: blobio.Sum(script),
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO import_runs (id, script, blake3, statements, loaded_at) VALUES (?, ?, ?, ?, ?)",
		res.RunID, name, res.ScriptHash, res.Statements, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, errors.Wrap(err, "recording import run")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing import")
	}

	logging.ImportEvent(res.RunID, name, res.Statements)
	return res, nil
}

// SplitStatements breaks a SQL script into individual statements on
// semicolons, honoring single-quoted strings (with '' escapes),
// double-quoted identifiers and -- line comments. Empty statements are
// dropped.
func SplitStatements(script string) []string {
	var statements []string
	var sb strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(sb.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
		sb.Reset()
	}

	const (
		plain = iota
		singleQuote
		doubleQuote
		lineComment
	)
	state := plain

	for i := 0; i < len(script); i++ {
		ch := script[i]
		switch state {
		case plain:
			switch ch {
			case ';':
				flush()
				continue
			case '\'':
				state = singleQuote
			case '"':
				state = doubleQuote
			case '-':
				if i+1 < len(script) && script[i+1] == '-' {
					state = lineComment
					i++
					continue
				}
			}
			sb.WriteByte(ch)
		case singleQuote:
			sb.WriteByte(ch)
			if ch == '\'' {
				// '' inside a string is an escaped quote, not the end.
				if i+1 < len(script) && script[i+1] == '\'' {
					sb.WriteByte('\'')
					i++
				} else {
					state = plain
				}
			}
		case doubleQuote:
			sb.WriteByte(ch)
			if ch == '"' {
				state = plain
			}
		case lineComment:
			if ch == '\n' {
				sb.WriteByte(ch)
				state = plain
			}
		}
	}
	flush()
	return statements
}
