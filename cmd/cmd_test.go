package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/hookdir"
	"github.com/grovetools/gerrit-hooks/testutil"
	"github.com/grovetools/gerrit-hooks/util/pathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), append([]string{"gerrit-hooks"}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestParsePatchsetCreated(t *testing.T) {
	testutil.Isolate(t)

	stdout, stderr, code := execute(t, "parse", "/usr/local/hooks/patchset-created.py",
		"--change", "123", "--kind", "REWORK", "--project", "demo", "--branch", "main",
		"--topic", "", "--uploader", "alice", "--uploader-username", "alice",
		"--commit", "abc123", "--patchset", "1")
	require.Equal(t, ExitOK, code, stderr)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "123", got["change"])
	assert.Equal(t, "REWORK", got["kind"])
	assert.Equal(t, "demo", got["project"])
	assert.Equal(t, "", got["topic"])
	assert.Equal(t, "1", got["patchset"])
}

func TestParseYAML(t *testing.T) {
	testutil.Isolate(t)

	stdout, stderr, code := execute(t, "parse", "-o", "yaml", "hashtags-changed",
		"--change", "I0123", "--hashtag", "a", "--hashtag", "b", "--hashtag", "c")
	require.Equal(t, ExitOK, code, stderr)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []any{"a", "b", "c"}, got["hashtag"])
	assert.Equal(t, "I0123", got["change"])
}

func TestParseErrors(t *testing.T) {
	testutil.Isolate(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "restricted choice",
			args:     []string{"parse", "patchset-created", "--kind", "INVALID_VALUE"},
			contains: []string{"INVALID_VALUE", "gerrit-hooks flags patchset-created"},
		},
		{
			name:     "unknown hook",
			args:     []string{"parse", "change-merge"},
			contains: []string{"unknown hook type 'change-merge'", "Did you mean: change-merged"},
		},
		{
			name:     "unknown flag",
			args:     []string{"parse", "cla-signed", "--change", "1"},
			contains: []string{"unknown flag: --change"},
		},
		{
			name:     "missing hook",
			args:     []string{"parse"},
			contains: []string{"requires a hook name"},
		},
		{
			name:     "bad format",
			args:     []string{"parse", "-o", "xml", "submit"},
			contains: []string{"unsupported format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code := execute(t, tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Empty(t, stdout)
			for _, want := range tt.contains {
				assert.Contains(t, stderr, want)
			}
		})
	}
}

func TestParseApprovalCategories(t *testing.T) {
	dir := testutil.Isolate(t)
	testutil.WriteConfig(t, dir, "approval_categories: [Library-Compliance]\n")

	stdout, stderr, code := execute(t, "parse", "--label", "Code-Review-2", "comment-added",
		"--change", "I0123", "--Library-Compliance", "1", "--Code-Review-2", "-1", "--Code-Review-2-oldValue", "0")
	require.Equal(t, ExitOK, code, stderr)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "1", got["Library-Compliance"])
	assert.Equal(t, "-1", got["Code-Review-2"])
	assert.Equal(t, "0", got["Code-Review-2-oldValue"])

	// Without the configuration the flag is unknown.
	_, _, code = execute(t, "parse", "comment-added", "--Code-Review-2", "1")
	assert.Equal(t, ExitUsage, code)
}

func TestParseHelp(t *testing.T) {
	testutil.Isolate(t)

	stdout, _, code := execute(t, "parse", "cla-signed", "--help")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "--submitter")
	assert.Contains(t, stdout, "--cla-id")

	stdout, _, code = execute(t, "parse", "--help")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "GERRIT-HOOKS PARSE")
	assert.Contains(t, stdout, "--format")
}

func TestRunDispatchesHandlers(t *testing.T) {
	dir := testutil.Isolate(t)
	workDir := t.TempDir()
	testutil.WriteConfig(t, dir, fmt.Sprintf(`handlers:
  patchset-created:
    - command: sh
      args: ["-c", "echo \"$GERRIT_HOOK $GERRIT_CHANGE $GERRIT_KIND\"; touch ran"]
      dir: %s
      timeout: 10s
`, workDir))

	stdout, stderr, code := execute(t, "run", "patchset-created", "--change", "123", "--kind", "REWORK")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "patchset-created 123 REWORK")
	assert.FileExists(t, filepath.Join(workDir, "ran"))
	assert.Contains(t, stderr, "Hook invoked")

	logFile := filepath.Join(os.Getenv("XDG_STATE_HOME"), "gerrit-hooks", "logs", "run.log")
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Handler finished")
}

func TestRunHandlerFailure(t *testing.T) {
	dir := testutil.Isolate(t)
	testutil.WriteConfig(t, dir, `handlers:
  CHANGE_MERGED:
    - command: sh
      args: ["-c", "exit 4"]
`)

	_, stderr, code := execute(t, "run", "change-merged", "--change", "1")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "Handler failed")
}

func TestRunDryRun(t *testing.T) {
	dir := testutil.Isolate(t)
	marker := filepath.Join(t.TempDir(), "ran")
	testutil.WriteConfig(t, dir, fmt.Sprintf(`handlers:
  submit:
    - command: touch
      args: [%q]
`, marker))

	_, stderr, code := execute(t, "run", "--dry-run", "submit", "--project", "demo")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stderr, "Would run handler")
	assert.NoFileExists(t, marker)
}

func TestRunInvalidArguments(t *testing.T) {
	testutil.Isolate(t)

	_, stderr, code := execute(t, "run", "topic-changed", "--bogus", "x")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "Failed to parse hook arguments")
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{"binary", []string{"/usr/bin/gerrit-hooks", "list"}, []string{"list"}},
		{"hook symlink", []string{"/srv/gerrit/hooks/change-merged", "--change", "1"},
			[]string{"run", "/srv/gerrit/hooks/change-merged", "--change", "1"}},
		{"hook with extension", []string{"hooks/comment-added.sh"}, []string{"run", "hooks/comment-added.sh"}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Args(tt.argv))
		})
	}
}

func TestMulticall(t *testing.T) {
	testutil.Isolate(t)

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"/srv/gerrit/hooks/ref-update", "--refname", "refs/heads/main"}, &stdout, &stderr)
	assert.Equal(t, ExitOK, code, stderr.String())
	assert.Contains(t, stderr.String(), "Hook invoked")
	assert.Contains(t, stderr.String(), "ref-update")
}

func TestList(t *testing.T) {
	testutil.Isolate(t)

	stdout, stderr, code := execute(t, "list", "--json")
	require.Equal(t, ExitOK, code, stderr)

	var infos []HookInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &infos))
	require.Len(t, infos, 16)
	assert.Equal(t, HookInfo{Name: "ref-update", Canonical: "REF_UPDATE", Flags: 6}, infos[0])

	stdout, _, code = execute(t, "list")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "cla-signed")
	assert.Contains(t, stdout, "CLA_SIGNED")
}

func TestFlags(t *testing.T) {
	testutil.Isolate(t)

	stdout, stderr, code := execute(t, "flags", "cla-signed", "--json")
	require.Equal(t, ExitOK, code, stderr)

	var infos []FlagInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &infos))
	var names []string
	for _, info := range infos {
		names = append(names, info.Flag)
	}
	assert.Equal(t, []string{"--submitter", "--user-id", "--cla-id"}, names)

	stdout, _, code = execute(t, "flags", "patchset-created")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "one of REWORK")
	assert.Contains(t, stdout, `default ""`)

	stdout, _, code = execute(t, "flags", "comment-added", "--label", "Library-Compliance", "--json")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "--Library-Compliance-oldValue")
}

func TestInstallStatusUninstall(t *testing.T) {
	testutil.Isolate(t)
	hooksDir := filepath.Join(t.TempDir(), "hooks")

	_, stderr, code := execute(t, "install", "--dir", hooksDir, "--binary", "/usr/local/bin/gerrit-hooks")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "--create")

	stdout, stderr, code := execute(t, "install", "--dir", hooksDir, "--binary", "/usr/local/bin/gerrit-hooks",
		"--create", "--only", "change-*", "--exclude", "change-deleted")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "change-merged installed")
	assert.NotContains(t, stdout, "change-deleted")

	m := hookdir.NewManager(hooksDir, "")
	assert.FileExists(t, filepath.Join(hooksDir, "change-restored"))
	assert.NoFileExists(t, filepath.Join(hooksDir, "change-deleted"))
	assert.NoFileExists(t, filepath.Join(hooksDir, "patchset-created"))

	stdout, _, code = execute(t, "install", "--dir", hooksDir, "--binary", "/usr/local/bin/gerrit-hooks", "--only", "change-*")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "change-deleted installed")
	assert.NotContains(t, stdout, "change-merged")

	stdout, _, code = execute(t, "status", "--dir", hooksDir)
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "managed")
	assert.Contains(t, stdout, "missing")

	stdout, stderr, code = execute(t, "uninstall", "--dir", hooksDir)
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "change-merged removed")
	for _, st := range m.Status() {
		assert.False(t, st.Exists, st.Hook)
	}
}

func TestInstallFromConfig(t *testing.T) {
	dir := testutil.Isolate(t)
	hooksDir := t.TempDir()
	testutil.WriteConfig(t, dir, fmt.Sprintf(`hooks_dir: %s
binary: /opt/gerrit-hooks
install:
  only: [submit]
`, hooksDir))

	_, stderr, code := execute(t, "install")
	require.Equal(t, ExitOK, code, stderr)

	content, err := os.ReadFile(filepath.Join(hooksDir, "submit"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "exec /opt/gerrit-hooks run submit")

	entries, err := os.ReadDir(hooksDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	assert.Equal(t, []string{"submit"}, names)
}

func TestInstallRequiresDir(t *testing.T) {
	testutil.Isolate(t)

	_, stderr, code := execute(t, "install")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "no hooks directory")
}

func TestConfigLayers(t *testing.T) {
	dir := testutil.Isolate(t)
	path := testutil.WriteConfig(t, dir, "approval_categories: [Library-Compliance]\n")

	stdout, stderr, code := execute(t, "config-layers")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "PROJECT CONFIG")
	assert.Contains(t, stdout, "# Source: "+path)
	assert.Contains(t, stdout, "FINAL MERGED CONFIG")
	assert.NotContains(t, stdout, "GLOBAL CONFIG")
}

func TestInvalidConfig(t *testing.T) {
	dir := testutil.Isolate(t)
	testutil.WriteConfig(t, dir, "handlers:\n  patchset-updated:\n    - command: x\n")

	_, stderr, code := execute(t, "list")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "patchset-updated")
}

func TestSchema(t *testing.T) {
	testutil.Isolate(t)

	stdout, stderr, code := execute(t, "schema")
	require.Equal(t, ExitOK, code, stderr)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Contains(t, schema, "properties")
}

func TestLogsTail(t *testing.T) {
	dir := testutil.Isolate(t)
	logFile := filepath.Join(t.TempDir(), "hooks.log")
	require.NoError(t, os.WriteFile(logFile, []byte("one\ntwo\nthree\n"), 0o644))
	testutil.WriteConfig(t, dir, fmt.Sprintf("logging:\n  file:\n    path: %s\n", logFile))

	stdout, stderr, code := execute(t, "logs", "--tail", "2")
	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "two\nthree\n", stdout)

	stdout, _, code = execute(t, "logs")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, "one\ntwo\nthree\n", stdout)
}

func TestLogsMissingFile(t *testing.T) {
	testutil.Isolate(t)

	_, stderr, code := execute(t, "logs", "handler")
	assert.NotEqual(t, ExitOK, code)
	assert.Contains(t, stderr, "no log file")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(path, []byte("first\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- followLog(ctx, path, &out, 0) }()

	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "first") }, 5*time.Second, 20*time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "second") }, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("followLog did not stop after cancel")
	}
}

func TestVersion(t *testing.T) {
	testutil.Isolate(t)

	stdout, _, code := execute(t, "version")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "gerrit-hooks dev\n")
	assert.Contains(t, stdout, "Commit:")

	stdout, _, code = execute(t, "--version")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "gerrit-hooks dev")
}

func TestPaths(t *testing.T) {
	dir := testutil.Isolate(t)
	cfgPath := testutil.WriteConfig(t, dir, "hooks_dir: /srv/gerrit/hooks\n")

	stdout, stderr, code := execute(t, "paths")
	require.Equal(t, ExitOK, code, stderr)

	var got PathsOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	same, err := pathutil.ComparePaths(cfgPath, got.ConfigFile)
	require.NoError(t, err)
	assert.True(t, same, "config file %q", got.ConfigFile)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "gerrit-hooks", "gerrit-hooks.yml"), got.GlobalConfig)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_STATE_HOME"), "gerrit-hooks", "logs", "run.log"), got.LogFile)
	assert.Equal(t, "/srv/gerrit/hooks", got.HooksDir)
}

func TestUsageErrors(t *testing.T) {
	testutil.Isolate(t)

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"unknown command", []string{"frobnicate"}, `unknown command "frobnicate" for "gerrit-hooks"`},
		{"unknown flag", []string{"list", "--bogus"}, "unknown flag: --bogus"},
		{"missing argument", []string{"flags"}, "accepts 1 arg(s), received 0"},
		{"extra argument", []string{"schema", "extra"}, `unknown command "extra"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := execute(t, tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, stderr, tt.contains)
			assert.NotContains(t, stderr, "INVALID_INPUT")
		})
	}

	stdout, _, code := execute(t)
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "USAGE")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, exitCode(nil))
	assert.Equal(t, ExitError, exitCode(assert.AnError))
	assert.Equal(t, ExitError, exitCode(fmt.Errorf("write /dev/full: %w", assert.AnError)))
	assert.Equal(t, ExitUsage, exitCode(errors.New(errors.ErrCodeInvalidInput, "bad")))
	assert.Equal(t, ExitUsage, exitCode(errors.UnknownHookType("x", "X")))
	assert.Equal(t, ExitError, exitCode(errors.HooksDirNotFound("/srv/hooks")))
}
