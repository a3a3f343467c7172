package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// PromptPack initializes a Loam repository in a temp dir and writes each
// file (name -> Markdown body) into it. It returns the absolute directory and
// the repository, failing the test on any error.
func PromptPack(t *testing.T, files map[string]string, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(dir, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir, repo
}
