// Package profile classifies intercepted tool invocations. A profile
// maps executable basenames to tool kinds and declares how to read
// inputs and the output from each tool's command line. The built-in
// profile covers the common C/C++ toolchain; a CUE overlay file can
// add tools or override entries, validated against the embedded schema.
package profile

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/buildtap/internal/record"
)

// ToolKind categorizes what a build tool does.
type ToolKind string

const (
	KindCompiler  ToolKind = "compiler"
	KindLinker    ToolKind = "linker"
	KindArchiver  ToolKind = "archiver"
	KindAssembler ToolKind = "assembler"
	KindOther     ToolKind = "other"
)

// OutputStyle says how a tool's output file appears on its command
// line.
type OutputStyle string

const (
	// OutputStyleFlag: the output follows a flag, conventionally -o.
	OutputStyleFlag OutputStyle = "flag"

	// OutputStyleFirst: the output is the first bare argument with a
	// matching extension (the ar convention).
	OutputStyleFirst OutputStyle = "first"

	// OutputStyleNone: the command line does not name the output.
	OutputStyleNone OutputStyle = "none"
)

// Tool describes one classified build tool.
type Tool struct {
	Name        string      `json:"name"`
	Kind        ToolKind    `json:"kind"`
	Match       []string    `json:"match"`
	InputExts   []string    `json:"inputExts"`
	OutputStyle OutputStyle `json:"outputStyle"`
	OutputFlag  string      `json:"outputFlag"`
	OutputExts  []string    `json:"outputExts"`
}

// Profile is a loaded, validated tool table. Tools are sorted by name
// so classification is deterministic.
type Profile struct {
	Tools []Tool
}

// Classify resolves an executable path to its tool entry by matching
// the basename against each tool's glob patterns. Tools are tried in
// name order; the first match wins.
func (p *Profile) Classify(path string) (Tool, bool) {
	base := filepath.Base(path)
	for _, t := range p.Tools {
		for _, pattern := range t.Match {
			if ok, err := filepath.Match(pattern, base); err == nil && ok {
				return t, true
			}
		}
	}
	return Tool{}, false
}

// WrapperNames returns the concrete executable names the supervisor
// should shadow: every match pattern without glob metacharacters,
// deduplicated, sorted.
func (p *Profile) WrapperNames() []string {
	seen := make(map[string]bool)
	names := []string{}
	for _, t := range p.Tools {
		for _, pattern := range t.Match {
			if strings.ContainsAny(pattern, "*?[") {
				continue
			}
			if !seen[pattern] {
				seen[pattern] = true
				names = append(names, pattern)
			}
		}
	}
	sort.Strings(names)
	return names
}

// CommandIO extracts the input files and the output file of an
// invocation according to the tool's declared conventions. Paths are
// resolved against the invocation's working directory. Only an
// explicitly named output is reported; tool-specific default outputs
// (a.out and friends) are not inferred.
func (t Tool) CommandIO(inv record.Invocation) (inputs []string, output string) {
	inputs = []string{}

	awaitingOutput := false
	for _, arg := range inv.Args {
		if awaitingOutput {
			output = resolvePath(inv.Cwd, arg)
			awaitingOutput = false
			continue
		}
		if t.OutputStyle == OutputStyleFlag && arg == t.OutputFlag {
			awaitingOutput = true
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if t.OutputStyle == OutputStyleFirst && output == "" && hasExt(arg, t.OutputExts) {
			output = resolvePath(inv.Cwd, arg)
			continue
		}
		if hasExt(arg, t.InputExts) {
			inputs = append(inputs, resolvePath(inv.Cwd, arg))
		}
	}
	return inputs, output
}

func hasExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func resolvePath(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}
