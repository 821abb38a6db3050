// Package shim implements the tool-wrapper entry point.
//
// The supervisor installs symlinks named after build tools, all pointing at
// the buildtap binary. Invoked under such an alias, the shim resolves the
// real tool by walking PATH while skipping its own directory, appends one
// record to the trace log, and replaces the process image with the real
// tool. A record failure prevents the exec: the build stops rather than
// running partially unobserved.
package shim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/buildtap/internal/record"
)

// Execer replaces the current process image. Injected for tests.
type Execer func(argv0 string, argv []string, envv []string) error

// Shim wires the record core to process replacement. The zero value is not
// usable; call New.
type Shim struct {
	LookupEnv  func(string) (string, bool)
	Getwd      func() (string, error)
	Executable func() (string, error)
	Environ    func() []string
	Exec       Execer
}

// New returns a Shim bound to the real process environment.
func New() *Shim {
	return &Shim{
		LookupEnv:  os.LookupEnv,
		Getwd:      os.Getwd,
		Executable: os.Executable,
		Environ:    os.Environ,
		Exec:       execProcess,
	}
}

// Run records the invocation named by argv and execs the real tool.
//
// argv is the wrapper's full argument vector: argv[0] carries the tool
// alias, the rest are passed through untouched (argv[0] included, so tools
// that inspect their own name keep working). Run only returns on failure.
func (s *Shim) Run(argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty argv")
	}
	name := filepath.Base(argv[0])

	self, err := s.Executable()
	if err != nil {
		return fmt.Errorf("locate wrapper binary: %w", err)
	}

	pathEnv, _ := s.LookupEnv("PATH")
	real, err := ResolveTool(name, filepath.Dir(self), pathEnv)
	if err != nil {
		return err
	}

	cfg, err := record.LoadConfig(s.LookupEnv)
	if err != nil {
		return err
	}

	rec := record.NewRecorder(cfg)
	rec.Getwd = s.Getwd
	if err := rec.Record(real, argv[1:]); err != nil {
		// No exec: the invocation must not run unrecorded
		return err
	}

	if err := s.Exec(real, argv, s.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", real, err)
	}
	return nil
}

// ResolveTool finds the real executable for a wrapper name by walking
// pathEnv while skipping selfDir, so a wrapper never resolves to itself.
// A name containing a path separator bypasses the walk and is returned
// unchanged.
func ResolveTool(name, selfDir, pathEnv string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}

	self := filepath.Clean(selfDir)
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			// POSIX reads an empty PATH entry as the current directory
			dir = "."
		}
		if filepath.Clean(dir) == self {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s: real tool not found in PATH", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	mode := info.Mode()
	return mode.IsRegular() && mode&0o111 != 0
}
