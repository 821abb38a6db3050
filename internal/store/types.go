package store

import (
	"github.com/roach88/buildtap/internal/record"
)

// Invocation is one intercepted command as stored in the database.
//
// ID is the content address of the (cwd, path, args) triple computed by
// internal/ident. Seq is assigned on first insert and orders rows across
// the whole store, not per session.
type Invocation struct {
	Seq        int64    `json:"seq"`
	ID         string   `json:"id"`
	SessionID  string   `json:"session_id"`
	Cwd        string   `json:"cwd"`
	Path       string   `json:"path"`
	Tool       string   `json:"tool"`
	Kind       string   `json:"kind,omitempty"`
	Args       []string `json:"args"`
	NArgs      int      `json:"nargs"`
	Line       int      `json:"line"`
	ImportedAt string   `json:"imported_at"`
}

// Record returns the invocation in its original trace record form.
func (inv Invocation) Record() record.Invocation {
	return record.Invocation{Cwd: inv.Cwd, Path: inv.Path, Args: inv.Args}
}

// Session is one supervised build whose trace has been imported.
type Session struct {
	ID        string `json:"id"`
	TracePath string `json:"trace_path"`
	CreatedAt string `json:"created_at"`
}

// Filter narrows ListInvocations results. Zero-valued fields match
// everything; Limit <= 0 means no limit.
type Filter struct {
	Kind      string
	Tool      string
	SessionID string
	Limit     int
}

// ImportResult summarizes a single ImportTrace call.
type ImportResult struct {
	SessionID string `json:"session_id"`
	Lines     int    `json:"lines"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
}

// Stats aggregates store contents for the stats command.
// Commands counts distinct content IDs; Invocations counts rows.
type Stats struct {
	Invocations int64            `json:"invocations"`
	Commands    int64            `json:"commands"`
	Sessions    int64            `json:"sessions"`
	ByKind      map[string]int64 `json:"by_kind"`
	ByTool      map[string]int64 `json:"by_tool"`
}
