package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRootCommand_UpToDate runs the command against a feed that matches the manifest.
func TestRootCommand_UpToDate(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "dappnode_package.json")
	composePath := filepath.Join(dir, "docker-compose.yml")
	outputPath := filepath.Join(dir, "github_output")

	require.NoError(t, os.WriteFile(manifestPath, []byte(`{"version": "0.0.1", "upstream": "v1.0.0"}`), 0o644))
	require.NoError(t, os.WriteFile(composePath, []byte("services: {}\n"), 0o644))

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.0.0"}`))
	}))
	defer ts.Close()

	t.Setenv("GITHUB_OUTPUT", outputPath)
	t.Setenv("GITHUB_ENV", "")
	t.Setenv("GITHUB_TOKEN", "")

	// An explicit --config must exist.
	root := NewRootCommand()
	root.SetArgs([]string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--manifest", manifestPath,
		"--compose", composePath,
		"--feed-url", ts.URL,
	})
	require.Error(t, root.Execute())

	root = NewRootCommand()
	root.SetArgs([]string{
		"--manifest", manifestPath,
		"--compose", composePath,
		"--feed-url", ts.URL,
	})
	require.NoError(t, root.Execute())

	got, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "updated=false\n", string(got))
}

// TestRootCommand_RejectsArgs verifies positional arguments are refused.
func TestRootCommand_RejectsArgs(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"extra"})
	root.SetOut(new(bytes.Buffer))

	require.Error(t, root.Execute())
}
