// Package cdb generates Clang JSON compilation databases from stored
// invocations.
//
// One entry is produced per source file of every compiler invocation, in
// invocation order. Non-compiler commands never contribute entries.
package cdb

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/buildtap/internal/profile"
	"github.com/roach88/buildtap/internal/store"
)

// Entry is one compile_commands.json element.
// Arguments holds the full argv including the compiler path; File is the
// source path resolved against Directory.
type Entry struct {
	Directory string   `json:"directory"`
	Arguments []string `json:"arguments"`
	File      string   `json:"file"`
}

// Build produces compilation database entries from seq-ordered invocations.
// A compiler invocation with several source files yields one entry per file,
// in argument order. The result is never nil.
func Build(invs []store.Invocation, prof *profile.Profile) []Entry {
	entries := []Entry{}

	for _, inv := range invs {
		tool, ok := prof.Classify(inv.Path)
		if !ok || tool.Kind != profile.KindCompiler {
			continue
		}

		sources, _ := tool.CommandIO(inv.Record())
		if len(sources) == 0 {
			continue
		}

		arguments := append([]string{inv.Path}, inv.Args...)
		for _, src := range sources {
			entries = append(entries, Entry{
				Directory: inv.Cwd,
				Arguments: arguments,
				File:      src,
			})
		}
	}

	return entries
}

// Write renders entries as compile_commands.json to w: a 2-space indented
// JSON array with HTML escaping disabled, so flags like -DA<B survive
// byte-for-byte.
func Write(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode compilation database: %w", err)
	}
	return nil
}
