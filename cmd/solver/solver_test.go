package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-watersort/watersort/internal/level"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestSolveTubes(t *testing.T) {
	out, err := execute(t, "solve", "--tubes", `[["A","A","A"],["A"],[],[]]`)
	require.NoError(t, err)
	assert.Contains(t, out, "solvable: true (solved)")
	assert.Contains(t, out, "bound: 1")
}

func TestSolveJSON(t *testing.T) {
	out, err := execute(t, "solve", "--json", "--capacity", "2", "--tubes", `[["A","B"],["B","A"]]`)
	require.NoError(t, err)

	var res resultOut
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Solvable)
	assert.Equal(t, "unsolvable", res.Outcome)
}

func TestSolveStrict(t *testing.T) {
	_, err := execute(t, "solve", "--strict", "--max-depth", "0", "--tubes", `[["A","A","A"],["A"],[],[]]`)
	assert.ErrorIs(t, err, errUnsolved)
}

func TestSolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simple.yaml")
	require.NoError(t, level.Builtin()[1].Save(path))

	out, err := execute(t, "solve", "--workers", "0", path)
	require.NoError(t, err)
	assert.Contains(t, out, "solvable: false (unsolvable)")
	assert.Contains(t, out, "advisory:", "two units per color never fill a tube")
}

func TestSolveErrors(t *testing.T) {
	tests := [][]string{
		{"solve"},
		{"solve", "--tubes", "[["},
		{"solve", "--tubes", `[["A","A","A","A","A"]]`},
		{"solve", "--tubes", `[["A"]]`, "level.yaml"},
		{"solve", "missing.yaml"},
		{"--config", "missing.toml", "solve", "--tubes", `[["A"]]`},
	}
	for _, args := range tests {
		_, err := execute(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestGenerate(t *testing.T) {
	out, err := execute(t, "generate", "--colors", "3", "--spare", "1", "--seed", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "tubes:")

	again, err := execute(t, "generate", "--colors", "3", "--spare", "1", "--seed", "4")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenerateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.json")
	_, err := execute(t, "generate", "--colors", "3", "--spare", "2", "--seed", "1", "--check", "-o", path)
	require.NoError(t, err)

	l, err := level.Load(path)
	require.NoError(t, err)
	assert.Len(t, l.Tubes, 5)

	out, err := execute(t, "solve", path)
	require.NoError(t, err)
	assert.Contains(t, out, "solvable:")
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watersort.toml")
	cfg := "capacity = 2\nmax_depth = 10\n\n[cache]\nbackend = \"badger\"\nbadger_path = \"" + filepath.Join(dir, "verdicts") + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	out, err := execute(t, "--config", path, "solve", "--tubes", `[["A","B"],["B","A"],[]]`)
	require.NoError(t, err)
	assert.Contains(t, out, "solvable: true")

	out, err = execute(t, "--config", path, "solve", "--tubes", `[[],["B","A"],["A","B"]]`)
	require.NoError(t, err)
	assert.Contains(t, out, "cached verdict")
}
