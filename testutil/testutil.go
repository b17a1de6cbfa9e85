// Package testutil holds helpers shared by the gerrit-hooks test suites.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Isolate points config discovery and log files at empty temporary
// directories, disables colors and changes into a fresh working directory,
// which it returns.
func Isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("GERRIT_HOOKS_LOG_LEVEL", "")
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// WriteConfig writes content as gerrit-hooks.yml in dir and returns its path.
func WriteConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "gerrit-hooks.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteExecutable writes a shell script named name in dir and returns its path.
func WriteExecutable(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// RequireCommand skips the test if name is not on PATH.
func RequireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}
