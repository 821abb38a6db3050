package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/buildtap/internal/ident"
	"github.com/roach88/buildtap/internal/profile"
	"github.com/roach88/buildtap/internal/record"
	"github.com/roach88/buildtap/internal/store"
)

// openStore opens the invocation database. Commands that only read pass
// create=false: a missing database is then a command error rather than
// an implicitly created empty one.
func openStore(opts *RootOptions, create bool) (*store.Store, error) {
	path := opts.databasePath()
	if create {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s not found (import a trace first)", path)
	}
	return store.Open(path)
}

// loadInvocations supplies the analysis commands. An explicit trace
// path scans the log directly; otherwise rows come from the database.
func loadInvocations(ctx context.Context, opts *RootOptions) ([]store.Invocation, *profile.Profile, error) {
	prof, err := profile.Load(opts.Profile)
	if err != nil {
		return nil, nil, err
	}

	if opts.Trace != "" {
		invs, err := scanTrace(opts.Trace, prof)
		return invs, prof, err
	}

	st, err := openStore(opts, false)
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	invs, err := st.ListInvocations(ctx, store.Filter{})
	return invs, prof, err
}

// scanTrace reads a trace log into store-shaped invocations without a
// database. Seq is the line number; repeated identical commands collapse
// to their first occurrence, matching the store's import semantics.
func scanTrace(path string, prof *profile.Profile) ([]store.Invocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace log: %w", err)
	}
	defer f.Close()

	invs := []store.Invocation{}
	seen := make(map[string]bool)

	sc := record.NewScanner(f)
	for sc.Scan() {
		rec := sc.Invocation()
		id := ident.InvocationID(rec)
		if seen[id] {
			continue
		}
		seen[id] = true

		kind := ""
		if tool, ok := prof.Classify(rec.Path); ok {
			kind = string(tool.Kind)
		}
		invs = append(invs, store.Invocation{
			Seq:   int64(sc.Line()),
			ID:    id,
			Cwd:   rec.Cwd,
			Path:  rec.Path,
			Tool:  filepath.Base(rec.Path),
			Kind:  kind,
			Args:  rec.Args,
			NArgs: len(rec.Args),
			Line:  sc.Line(),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan trace log: %w", err)
	}
	return invs, nil
}
