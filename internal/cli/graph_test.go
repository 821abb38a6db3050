package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/buildtap/internal/ident"
)

func TestGraph_RendersDOT(t *testing.T) {
	dbPath := seedDatabase(t, buildTrace)

	buf, err := runCommand(t, "--db", dbPath, "graph")
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "digraph G {")
	assert.Contains(t, out, "rankdir=LR;")
	assert.Contains(t, out, `label="[1] cc"`)
	assert.Contains(t, out, `label="[3] ld"`)

	// The link consumes both compiles.
	ccMain := invocationID("/home/user/proj", "/usr/bin/cc", "-c", "main.c", "-o", "main.o")
	link := invocationID("/home/user/proj", "/usr/bin/ld", "-o", "app", "main.o", "util.o")
	assert.Contains(t, out, fmt.Sprintf("%q -> %q;", ccMain, link))
}

func TestGraph_FromTraceDirectly(t *testing.T) {
	tracePath := writeTrace(t, buildTrace)

	buf, err := runCommand(t, "--trace", tracePath, "graph")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "digraph G {")
	assert.Contains(t, buf.String(), `label="[3] ld"`)
}

func TestGraph_JSONAdjacency(t *testing.T) {
	dbPath := seedDatabase(t, buildTrace)

	buf, err := runCommand(t, "--format", "json", "--db", dbPath, "graph")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)

	nodes, ok := response.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, nodes, 3)

	first, ok := nodes[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cc", first["tool"])
	usedBy, ok := first["used_by"].([]interface{})
	require.True(t, ok)
	assert.Len(t, usedBy, 1)
}

func TestGraph_UsedBy(t *testing.T) {
	dbPath := seedDatabase(t, buildTrace)
	ccMain := invocationID("/home/user/proj", "/usr/bin/cc", "-c", "main.c", "-o", "main.o")

	buf, err := runCommand(t, "--db", dbPath, "graph", "--used-by", ident.ShortID(ccMain))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "ld")
	assert.NotContains(t, buf.String(), "No consumers.")
}

func TestGraph_UsedByLeaf(t *testing.T) {
	dbPath := seedDatabase(t, buildTrace)
	link := invocationID("/home/user/proj", "/usr/bin/ld", "-o", "app", "main.o", "util.o")

	buf, err := runCommand(t, "--db", dbPath, "graph", "--used-by", link)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No consumers.")
}

func TestGraph_UsedByUnknownID(t *testing.T) {
	dbPath := seedDatabase(t, buildTrace)

	_, err := runCommand(t, "--db", dbPath, "graph", "--used-by", "feedfacefeedface")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no invocation matches")
}
