package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrAmbiguousID is returned by FindInvocation when a short ID prefix
// matches more than one distinct command.
var ErrAmbiguousID = errors.New("ambiguous invocation id prefix")

const invocationColumns = `seq, id, session_id, cwd, path, tool, kind, args, nargs, line, imported_at`

// ListInvocations returns invocations matching the filter.
// Results are ordered by seq ASC, id ASC per CP-2 so repeated runs over the
// same store produce identical output.
func (s *Store) ListInvocations(ctx context.Context, f Filter) ([]Invocation, error) {
	query := `SELECT ` + invocationColumns + ` FROM invocations`

	var (
		clauses []string
		args    []any
	)
	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Tool != "" {
		clauses = append(clauses, "tool = ?")
		args = append(args, f.Tool)
	}
	if f.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var invocations []Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		invocations = append(invocations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invocations: %w", err)
	}

	if invocations == nil {
		invocations = []Invocation{}
	}

	return invocations, nil
}

// GetInvocation retrieves a single invocation by its full content ID.
// When the same command appears in several sessions the earliest row wins.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetInvocation(ctx context.Context, id string) (Invocation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invocationColumns+`
		FROM invocations
		WHERE id = ?
		ORDER BY seq ASC
		LIMIT 1
	`, id)
	return scanInvocationRow(row)
}

// FindInvocation resolves an invocation by full content ID or by a unique
// ID prefix, matching the short form printed by the list command.
// Returns sql.ErrNoRows when nothing matches and ErrAmbiguousID when the
// prefix matches more than one distinct command.
func (s *Store) FindInvocation(ctx context.Context, idOrPrefix string) (Invocation, error) {
	inv, err := s.GetInvocation(ctx, idOrPrefix)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Invocation{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT id
		FROM invocations
		WHERE id LIKE ? || '%'
		ORDER BY id COLLATE BINARY ASC
		LIMIT 2
	`, idOrPrefix)
	if err != nil {
		return Invocation{}, fmt.Errorf("query invocation by prefix: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return Invocation{}, fmt.Errorf("scan invocation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return Invocation{}, fmt.Errorf("iterate invocation ids: %w", err)
	}

	switch len(ids) {
	case 0:
		return Invocation{}, sql.ErrNoRows
	case 1:
		return s.GetInvocation(ctx, ids[0])
	default:
		return Invocation{}, fmt.Errorf("%w: %q", ErrAmbiguousID, idOrPrefix)
	}
}

// ListSessions returns all registered sessions ordered by creation time,
// then by id for determinism.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trace_path, created_at
		FROM sessions
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.TracePath, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	if sessions == nil {
		sessions = []Session{}
	}

	return sessions, nil
}

// ReadStats aggregates invocation counts for the stats command.
// The ByKind and ByTool maps are always non-nil.
func (s *Store) ReadStats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByKind: map[string]int64{},
		ByTool: map[string]int64{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT id) FROM invocations
	`).Scan(&stats.Invocations, &stats.Commands)
	if err != nil {
		return Stats{}, fmt.Errorf("count invocations: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&stats.Sessions)
	if err != nil {
		return Stats{}, fmt.Errorf("count sessions: %w", err)
	}

	if err := s.countBy(ctx, "kind", stats.ByKind); err != nil {
		return Stats{}, err
	}
	if err := s.countBy(ctx, "tool", stats.ByTool); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// countBy fills dst with row counts grouped by the given column.
// column is always a fixed identifier, never user input.
func (s *Store) countBy(ctx context.Context, column string, dst map[string]int64) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM invocations GROUP BY %s
	`, column, column))
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		dst[key] = count
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s counts: %w", column, err)
	}

	return nil
}

// scanInvocation scans a row into an Invocation struct.
func scanInvocation(rows *sql.Rows) (Invocation, error) {
	var inv Invocation
	var argsJSON string

	if err := rows.Scan(
		&inv.Seq, &inv.ID, &inv.SessionID, &inv.Cwd, &inv.Path,
		&inv.Tool, &inv.Kind, &argsJSON, &inv.NArgs, &inv.Line, &inv.ImportedAt,
	); err != nil {
		return Invocation{}, fmt.Errorf("scan invocation: %w", err)
	}

	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return Invocation{}, err
	}
	inv.Args = args

	return inv, nil
}

// scanInvocationRow scans a single row into an Invocation struct.
func scanInvocationRow(row *sql.Row) (Invocation, error) {
	var inv Invocation
	var argsJSON string

	if err := row.Scan(
		&inv.Seq, &inv.ID, &inv.SessionID, &inv.Cwd, &inv.Path,
		&inv.Tool, &inv.Kind, &argsJSON, &inv.NArgs, &inv.Line, &inv.ImportedAt,
	); err != nil {
		return Invocation{}, err
	}

	args, err := unmarshalArgs(argsJSON)
	if err != nil {
		return Invocation{}, err
	}
	inv.Args = args

	return inv, nil
}
