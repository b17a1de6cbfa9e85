package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/grovetools/gerrit-hooks/command"
	"github.com/grovetools/gerrit-hooks/config"
	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/flags"
	"github.com/grovetools/gerrit-hooks/parser"
	"github.com/grovetools/gerrit-hooks/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvocation(t *testing.T) *Invocation {
	t.Helper()
	opts, err := parser.ParseArgs(flags.NewRegistry(), "comment-added", []string{
		"--change", "I0123", "--project", "demo", "--Code-Review", "2", "--Code-Review-oldValue", "0",
	})
	require.NoError(t, err)
	return NewInvocation(opts)
}

func testDispatcher(t *testing.T, stdout *bytes.Buffer) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	testutil.RequireCommand(t, "sh")
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetLevel(logrus.DebugLevel)
	d := NewDispatcher(command.NewSafeBuilder(), logger.WithField("component", "test"))
	return d.WithOutput(stdout, &bytes.Buffer{}), &logs
}

func TestInvocationEnv(t *testing.T) {
	inv := testInvocation(t)
	_, err := uuid.Parse(inv.ID)
	require.NoError(t, err)

	env := inv.Env()
	assert.Equal(t, "GERRIT_HOOK=comment-added", env[0])
	assert.Equal(t, "GERRIT_HOOK_INVOCATION="+inv.ID, env[1])
	assert.Contains(t, env, "GERRIT_CHANGE=I0123")
	assert.Contains(t, env, "GERRIT_CODE_REVIEW=2")
	assert.Contains(t, env, "GERRIT_CODE_REVIEW_OLDVALUE=0")
	assert.Contains(t, env, "GERRIT_TOPIC=")

	assert.NotEqual(t, inv.ID, NewInvocation(inv.Options).ID)
}

func TestInvocationPayload(t *testing.T) {
	inv := testInvocation(t)
	data, err := inv.Payload()
	require.NoError(t, err)

	var p struct {
		Hook       string            `json:"hook"`
		Invocation string            `json:"invocation"`
		Options    map[string]any    `json:"options"`
		Approvals  []parser.Approval `json:"approvals"`
	}
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, "comment-added", p.Hook)
	assert.Equal(t, inv.ID, p.Invocation)
	assert.Equal(t, "I0123", p.Options["change"])
	assert.Equal(t, []parser.Approval{{Label: "Code-Review", Value: "2", OldValue: "0"}}, p.Approvals)
}

func TestDispatchRunsHandlersInOrder(t *testing.T) {
	inv := testInvocation(t)
	var stdout bytes.Buffer
	d, logs := testDispatcher(t, &stdout)

	outcomes, err := d.Dispatch(context.Background(), inv, []config.HandlerConfig{
		{Command: "sh", Args: []string{"-c", `echo "first $GERRIT_HOOK $GERRIT_PROJECT"`}},
		{Command: "sh", Args: []string{"-c", `echo second; cat`}, Timeout: "5s"},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}

	lines := strings.SplitN(stdout.String(), "\n", 3)
	assert.Equal(t, "first comment-added demo", lines[0])
	assert.Equal(t, "second", lines[1])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &payload))
	assert.Equal(t, inv.ID, payload["invocation"])

	assert.Contains(t, logs.String(), "Handler finished")
	assert.Contains(t, logs.String(), inv.ID)
}

func TestDispatchStopsAtFirstFailure(t *testing.T) {
	inv := testInvocation(t)
	marker := filepath.Join(t.TempDir(), "ran")
	var stdout bytes.Buffer
	d, logs := testDispatcher(t, &stdout)

	outcomes, err := d.Dispatch(context.Background(), inv, []config.HandlerConfig{
		{Command: "sh", Args: []string{"-c", "exit 1"}},
		{Command: "touch", Args: []string{marker}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))
	require.Len(t, outcomes, 1)
	assert.Equal(t, err, outcomes[0].Err)

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "second handler must not run")
	assert.Contains(t, logs.String(), "Handler failed")
}

func TestDispatchWorkingDirectory(t *testing.T) {
	inv := testInvocation(t)
	dir := t.TempDir()
	var stdout bytes.Buffer
	d, _ := testDispatcher(t, &stdout)

	_, err := d.Dispatch(context.Background(), inv, []config.HandlerConfig{
		{Command: "sh", Args: []string{"-c", "touch created"}, Dir: dir},
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "created"))
}

func TestDispatchWithoutHandlers(t *testing.T) {
	d, _ := testDispatcher(t, &bytes.Buffer{})
	outcomes, err := d.Dispatch(context.Background(), testInvocation(t), nil)
	assert.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestDispatchRejectsUnsafeCommand(t *testing.T) {
	d, _ := testDispatcher(t, &bytes.Buffer{})
	_, err := d.Dispatch(context.Background(), testInvocation(t), []config.HandlerConfig{
		{Command: "echo hi; id"},
	})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}
