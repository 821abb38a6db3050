package shim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/buildtap/internal/record"
)

func writeTool(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
	return path
}

func pathList(dirs ...string) string {
	list := ""
	for i, dir := range dirs {
		if i > 0 {
			list += string(os.PathListSeparator)
		}
		list += dir
	}
	return list
}

func TestResolveTool_SkipsSelfDir(t *testing.T) {
	wrapDir := t.TempDir()
	realDir := t.TempDir()
	writeTool(t, wrapDir, "cc", 0o755)
	real := writeTool(t, realDir, "cc", 0o755)

	got, err := ResolveTool("cc", wrapDir, pathList(wrapDir, realDir))
	require.NoError(t, err)
	assert.Equal(t, real, got)
}

func TestResolveTool_FirstMatchWins(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	first := writeTool(t, dirA, "cc", 0o755)
	writeTool(t, dirB, "cc", 0o755)

	got, err := ResolveTool("cc", t.TempDir(), pathList(dirA, dirB))
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestResolveTool_SkipsNonExecutable(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeTool(t, dirA, "cc", 0o644)
	real := writeTool(t, dirB, "cc", 0o755)

	got, err := ResolveTool("cc", t.TempDir(), pathList(dirA, dirB))
	require.NoError(t, err)
	assert.Equal(t, real, got)
}

func TestResolveTool_SkipsDirectories(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dirA, "cc"), 0o755))
	real := writeTool(t, dirB, "cc", 0o755)

	got, err := ResolveTool("cc", t.TempDir(), pathList(dirA, dirB))
	require.NoError(t, err)
	assert.Equal(t, real, got)
}

func TestResolveTool_NotFound(t *testing.T) {
	wrapDir := t.TempDir()
	writeTool(t, wrapDir, "cc", 0o755)

	// Only the wrapper dir is on PATH, so nothing can resolve
	_, err := ResolveTool("cc", wrapDir, wrapDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cc")
}

func TestResolveTool_PathNameBypassesWalk(t *testing.T) {
	got, err := ResolveTool("/opt/cross/bin/cc", t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "/opt/cross/bin/cc", got)
}

// execCapture records the exec call instead of replacing the process.
type execCapture struct {
	called bool
	argv0  string
	argv   []string
	envv   []string
	err    error
}

func (e *execCapture) exec(argv0 string, argv []string, envv []string) error {
	e.called = true
	e.argv0 = argv0
	e.argv = argv
	e.envv = envv
	return e.err
}

func testShim(wrapDir string, env map[string]string, ec *execCapture) *Shim {
	return &Shim{
		LookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		Getwd:      func() (string, error) { return "/home/user/proj", nil },
		Executable: func() (string, error) { return filepath.Join(wrapDir, "buildtap"), nil },
		Environ:    func() []string { return []string{"PATH=" + env["PATH"]} },
		Exec:       ec.exec,
	}
}

func TestRun_RecordsThenExecs(t *testing.T) {
	wrapDir := t.TempDir()
	realDir := t.TempDir()
	real := writeTool(t, realDir, "cc", 0o755)
	logPath := filepath.Join(t.TempDir(), "build.trace")

	ec := &execCapture{}
	s := testShim(wrapDir, map[string]string{
		"PATH":        pathList(wrapDir, realDir),
		record.EnvLog: logPath,
	}, ec)

	err := s.Run([]string{"cc", "-c", "main.c"})
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "/home/user/proj||"+real+"||-c||main.c\n", string(data))

	require.True(t, ec.called)
	assert.Equal(t, real, ec.argv0)
	// Original argv passes through untouched, alias name included
	assert.Equal(t, []string{"cc", "-c", "main.c"}, ec.argv)
	assert.Contains(t, ec.envv[0], "PATH=")
}

func TestRun_RecordFailurePreventsExec(t *testing.T) {
	wrapDir := t.TempDir()
	realDir := t.TempDir()
	writeTool(t, realDir, "cc", 0o755)

	ec := &execCapture{}
	s := testShim(wrapDir, map[string]string{
		"PATH": pathList(wrapDir, realDir),
	}, ec)

	err := s.Run([]string{"cc", "-c", "main.c"})
	require.Error(t, err)
	assert.True(t, record.IsConfigurationError(err))
	assert.False(t, ec.called)
}

func TestRun_ResolveFailureWritesNothing(t *testing.T) {
	wrapDir := t.TempDir()
	logPath := filepath.Join(t.TempDir(), "build.trace")

	ec := &execCapture{}
	s := testShim(wrapDir, map[string]string{
		"PATH":        wrapDir,
		record.EnvLog: logPath,
	}, ec)

	err := s.Run([]string{"cc", "-c", "main.c"})
	require.Error(t, err)
	assert.False(t, ec.called)

	_, statErr := os.Stat(logPath)
	assert.True(t, os.IsNotExist(statErr), "trace log must not be created")
}

func TestRun_ExecFailureSurfaces(t *testing.T) {
	wrapDir := t.TempDir()
	realDir := t.TempDir()
	writeTool(t, realDir, "cc", 0o755)
	logPath := filepath.Join(t.TempDir(), "build.trace")

	ec := &execCapture{err: errors.New("no such binary format")}
	s := testShim(wrapDir, map[string]string{
		"PATH":        pathList(wrapDir, realDir),
		record.EnvLog: logPath,
	}, ec)

	err := s.Run([]string{"cc", "-c", "main.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec")

	// The record was already written before the exec attempt
	data, readErr := os.ReadFile(logPath)
	require.NoError(t, readErr)
	assert.NotEmpty(t, data)
}

func TestRun_AliasWithPathResolvesByBase(t *testing.T) {
	wrapDir := t.TempDir()
	realDir := t.TempDir()
	real := writeTool(t, realDir, "cc", 0o755)
	logPath := filepath.Join(t.TempDir(), "build.trace")

	ec := &execCapture{}
	s := testShim(wrapDir, map[string]string{
		"PATH":        pathList(wrapDir, realDir),
		record.EnvLog: logPath,
	}, ec)

	err := s.Run([]string{filepath.Join(wrapDir, "cc"), "-c", "main.c"})
	require.NoError(t, err)

	assert.Equal(t, real, ec.argv0)
	// argv[0] keeps the form the build system used
	assert.Equal(t, filepath.Join(wrapDir, "cc"), ec.argv[0])
}

func TestRun_EmptyArgv(t *testing.T) {
	s := testShim(t.TempDir(), map[string]string{}, &execCapture{})
	assert.Error(t, s.Run(nil))
}
