package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".buildtap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileConfig_AllKeys(t *testing.T) {
	path := writeConfig(t, `trace: build.trace
db: build.db
profile: tools.cue
output_dir: artifacts
`)

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "build.trace", cfg.Trace)
	assert.Equal(t, "build.db", cfg.Database)
	assert.Equal(t, "tools.cue", cfg.Profile)
	assert.Equal(t, "artifacts", cfg.OutputDir)
}

func TestLoadFileConfig_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "tracefile: build.trace\n")

	_, err := LoadFileConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracefile")
}

func TestLoadFileConfig_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)
}

func TestLoadFileConfig_MissingFile(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestFileConfig_SuppliesDefaults(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "from-config.db")
	cfgPath := writeConfig(t, "db: "+dbPath+"\n")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--config", cfgPath, "stats"})

	// The database does not exist, so the error names the path the
	// config file supplied
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), dbPath)
}

func TestFileConfig_FlagWins(t *testing.T) {
	cfgDB := filepath.Join(t.TempDir(), "from-config.db")
	flagDB := filepath.Join(t.TempDir(), "from-flag.db")
	cfgPath := writeConfig(t, "db: "+cfgDB+"\n")

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--config", cfgPath, "--db", flagDB, "stats"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), flagDB)
	assert.NotContains(t, err.Error(), cfgDB)
}

func TestFileConfig_ProbedInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "probed.db")
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigName), []byte("db: "+dbPath+"\n"), 0o644))
	chdir(t, dir)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"stats"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), dbPath)
}

func TestFileConfig_AbsentProbeIsFine(t *testing.T) {
	chdir(t, t.TempDir())

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"stats"})

	// No config file: the default database path is used and reported
	// missing
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buildtap.db")
}

func TestFileConfig_ExplicitMissingConfigFails(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "stats"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
