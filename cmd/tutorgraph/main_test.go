package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tutorgraph version 0.1.0")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Equal(t, "enriched\ntutoring\nvalidation\n", out)

	out, err = execute(t, "graph", "enriched")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "generate_queries")
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chat:
  graph: enriched
pipeline:
  max_search_queries: 5
  temperature.search: 0.4
`), 0644))

	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid!")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  backend: postgres\n"), 0644))

	_, err := execute(t, "validate", "--config", path)
	assert.Error(t, err)
}
