package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// sandbox runs the test inside an empty working directory with its own HOME
// and user config dir, and returns that directory.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, name := range []string{"MAX_BATCH_SIZE", "TIMEOUT", "PLAIN", "LOG_LEVEL", "METRICS_FILE", "RECURSIVE"} {
		t.Setenv("WORDINDEX_"+name, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// run executes the root command in-process and captures both streams.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// corpus writes the two-file fixture used across command tests.
func corpus(t *testing.T) {
	t.Helper()
	writeFile(t, "a.txt", "The computer is a machine\nComputer science\n")
	writeFile(t, "b.txt", "computer\n")
}
