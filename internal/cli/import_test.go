package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/buildtap/internal/store"
)

// buildTrace is a small two-step build: two compiles and a link.
const buildTrace = `/home/user/proj||/usr/bin/cc||-c||main.c||-o||main.o
/home/user/proj||/usr/bin/cc||-c||util.c||-o||util.o
/home/user/proj||/usr/bin/ld||-o||app||main.o||util.o
`

func writeTrace(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.trace")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// seedDatabase imports a trace through the real command and returns the
// database path.
func seedDatabase(t *testing.T, trace string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "build.db")
	_, err := runCommand(t, "--trace", writeTrace(t, trace), "--db", dbPath, "import")
	require.NoError(t, err)
	return dbPath
}

func TestImport_LoadsTrace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "build.db")

	buf, err := runCommand(t, "--trace", writeTrace(t, buildTrace), "--db", dbPath, "import")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Imported 3 of 3 records (0 duplicates skipped)")
	assert.Contains(t, buf.String(), "Session: ")
}

func TestImport_SameSessionIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "build.db")
	tracePath := writeTrace(t, buildTrace)

	_, err := runCommand(t, "--trace", tracePath, "--db", dbPath, "import", "--session", "nightly")
	require.NoError(t, err)

	buf, err := runCommand(t, "--trace", tracePath, "--db", dbPath, "import", "--session", "nightly")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Imported 0 of 3 records (3 duplicates skipped)")
}

func TestImport_NoTraceSpecified(t *testing.T) {
	_, err := runCommand(t, "--db", filepath.Join(t.TempDir(), "x.db"), "import")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no trace log specified")
}

func TestImport_MissingTraceFile(t *testing.T) {
	_, err := runCommand(t,
		"--trace", filepath.Join(t.TempDir(), "absent.trace"),
		"--db", filepath.Join(t.TempDir(), "x.db"),
		"import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import trace")
}

func TestImport_MalformedTraceAborts(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "build.db")
	tracePath := writeTrace(t, "/w||/usr/bin/cc||-c||a.c\nnot a record\n")

	_, err := runCommand(t, "--trace", tracePath, "--db", dbPath, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	// Nothing was committed
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	invs, err := st.ListInvocations(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Empty(t, invs)
}

func TestImport_CreatesDatabaseDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "build.db")

	_, err := runCommand(t, "--trace", writeTrace(t, buildTrace), "--db", dbPath, "import")
	require.NoError(t, err)

	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}

func TestImport_JSONEnvelope(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "build.db")

	buf, err := runCommand(t, "--format", "json",
		"--trace", writeTrace(t, buildTrace), "--db", dbPath, "import")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["imported"])
	assert.NotEmpty(t, data["session_id"])
}
