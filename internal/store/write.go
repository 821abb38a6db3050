package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/buildtap/internal/ident"
	"github.com/roach88/buildtap/internal/profile"
	"github.com/roach88/buildtap/internal/record"
)

// RegisterSession inserts a session row.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - registering the same
// session twice is silently ignored.
func (s *Store) RegisterSession(ctx context.Context, sess Session) error {
	if sess.CreatedAt == "" {
		sess.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, trace_path, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.TracePath, sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	return nil
}

// ImportTrace reads the trace log at tracePath and loads every record into
// the store under the given session. An empty sessionID generates a fresh
// one; the session row is registered as part of the same transaction.
//
// Each record is classified against prof and content-addressed via
// internal/ident. Duplicate (session, id) pairs are skipped through
// ON CONFLICT DO NOTHING per CP-1, so re-importing a trace is idempotent
// while the same command in two different sessions is kept once per session.
//
// A malformed line aborts the import and rolls back the whole transaction.
func (s *Store) ImportTrace(ctx context.Context, tracePath, sessionID string, prof *profile.Profile) (ImportResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	res := ImportResult{SessionID: sessionID}

	f, err := os.Open(tracePath)
	if err != nil {
		return res, fmt.Errorf("import trace: %w", err)
	}
	defer f.Close()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("import trace: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	importedAt := s.now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, trace_path, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sessionID, tracePath, importedAt)
	if err != nil {
		return res, fmt.Errorf("import trace: register session: %w", err)
	}

	sc := record.NewScanner(f)
	for sc.Scan() {
		inv := sc.Invocation()
		res.Lines++

		kind := ""
		if tool, ok := prof.Classify(inv.Path); ok {
			kind = string(tool.Kind)
		}

		argsJSON, err := marshalArgs(inv.Args)
		if err != nil {
			return res, fmt.Errorf("import trace: line %d: %w", sc.Line(), err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO invocations
			(id, session_id, cwd, path, tool, kind, args, nargs, line, imported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, id) DO NOTHING
		`,
			ident.InvocationID(inv),
			sessionID,
			inv.Cwd,
			inv.Path,
			filepath.Base(inv.Path),
			kind,
			argsJSON,
			len(inv.Args),
			sc.Line(),
			importedAt,
		)
		if err != nil {
			return res, fmt.Errorf("import trace: line %d: %w", sc.Line(), err)
		}

		// Check if a row was actually inserted
		n, err := result.RowsAffected()
		if err != nil {
			return res, fmt.Errorf("import trace: rows affected: %w", err)
		}
		if n > 0 {
			res.Imported++
		} else {
			res.Skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("import trace: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("import trace: commit: %w", err)
	}

	return res, nil
}
