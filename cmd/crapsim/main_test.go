package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/craps-backend/internal/sim"
)

var rulesDir = filepath.Join("..", "..", "configs")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--rules-dir", rulesDir))
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogCommand(t *testing.T) {
	out, err := run(t, "catalog", "--table", "highroller")
	require.NoError(t, err)
	assert.Contains(t, out, "min 100  max 50000  unit 5")
	assert.Contains(t, out, "pass_line")
	assert.Contains(t, out, "contract")
}

func TestSimulateCommandJSON(t *testing.T) {
	out, err := run(t, "simulate", "--strategies", "passline,field", "--sessions", "5", "--rolls", "30", "--seed", "3", "--json")
	require.NoError(t, err)
	var rep sim.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 5, rep.Sessions)
	assert.Contains(t, rep.ByKind, "field")
}

func TestSimulateRecordThenReplay(t *testing.T) {
	db := filepath.Join(t.TempDir(), "rolls.db")
	out, err := run(t, "simulate", "--strategies", "dontpass", "--sessions", "2", "--rolls", "25", "--seed", "11", "--record", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 sessions")
	assert.Contains(t, out, "dont_pass")

	out, err = run(t, "sessions", "--record", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	id := strings.Fields(lines[0])[0]

	out, err = run(t, "replay", id, "--record", db)
	require.NoError(t, err)
	assert.Contains(t, out, "session "+id)
	assert.Contains(t, out, "p1-dontpass")
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "replay", "abc")
	require.ErrorContains(t, err, "--record is required")

	_, err = run(t, "simulate", "--strategies", "nope", "--sessions", "1")
	require.ErrorContains(t, err, "unknown strategy")

	t.Setenv("CRAPSIM_TABLE", "../x")
	_, err = run(t, "catalog")
	require.Error(t, err)
}
