package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestNewLogger(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	logger := NewLogger("test-component")
	require.NotNil(t, logger)
	assert.Equal(t, "test-component", logger.Data["component"])
	assert.Same(t, logger, NewLogger("test-component"))
	assert.NotSame(t, logger, NewLogger("other-component"))
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "hook parsed",
				Data: logrus.Fields{
					"component": "run",
					"hook":      "patchset-created",
				},
			},
			want: []string{"[INFO]", "run", "hook parsed", "hook=patchset-created"},
		},
		{
			name:   "simple format",
			config: FormatConfig{DisableTimestamp: true, DisableComponent: true},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "handler slow",
				Data:    logrus.Fields{"component": "run"},
			},
			want:    []string{"[WARN] handler slow"},
			notWant: []string{"run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &TextFormatter{Config: tt.config}
			out, err := f.Format(tt.entry)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(out), w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, string(out), nw)
			}
			assert.True(t, strings.HasSuffix(string(out), "\n"))
		})
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	f := &TextFormatter{Config: FormatConfig{DisableTimestamp: true, DisableComponent: true}}
	out, err := f.Format(&logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"b": 2, "a": 1, "c": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "[INFO] m a=1 b=2 c=3\n", string(out))
}

func TestNewWritesToFileAndStderr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	var stderr bytes.Buffer

	logger := New("run", Config{
		File:   FileSinkConfig{Path: path, MaxSizeMB: 1},
		Format: FormatConfig{StructuredToStderr: "always"},
	}, &stderr)
	logger.WithField("hook", "submit").Info("dispatching")

	assert.Contains(t, stderr.String(), "dispatching")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dispatching")
	assert.Contains(t, string(data), "hook=submit")
}

func TestNewWithoutSinks(t *testing.T) {
	var stderr bytes.Buffer
	logger := New("quiet", Config{
		File:   FileSinkConfig{Enabled: boolPtr(false)},
		Format: FormatConfig{StructuredToStderr: "never"},
	}, &stderr)
	logger.Error("dropped")

	assert.Empty(t, stderr.String())
}

func TestAutoModeWritesToNonTerminal(t *testing.T) {
	var stderr bytes.Buffer
	logger := New("auto", Config{File: FileSinkConfig{Enabled: boolPtr(false)}}, &stderr)
	logger.Info("visible")

	assert.Contains(t, stderr.String(), "visible")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
		want  logrus.Level
	}{
		{"default", "", "", logrus.InfoLevel},
		{"from config", "", "warn", logrus.WarnLevel},
		{"env wins", "debug", "error", logrus.DebugLevel},
		{"invalid falls back", "", "loud", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envLevel, tt.env)
			logger := New("levels", Config{
				Level: tt.level,
				File:  FileSinkConfig{Enabled: boolPtr(false)},
			}, &bytes.Buffer{})
			assert.Equal(t, tt.want, logger.Logger.GetLevel())
		})
	}
}

func TestCallerFromEnv(t *testing.T) {
	t.Setenv(envCaller, "true")
	logger := New("caller", Config{File: FileSinkConfig{Enabled: boolPtr(false)}}, &bytes.Buffer{})
	assert.True(t, logger.Logger.ReportCaller)
}

func TestJSONPreset(t *testing.T) {
	var stderr bytes.Buffer
	logger := New("json", Config{
		File:   FileSinkConfig{Enabled: boolPtr(false)},
		Format: FormatConfig{Preset: "json", StructuredToStderr: "always"},
	}, &stderr)
	logger.WithField("invocation", "abc").Info("done")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &line))
	assert.Equal(t, "done", line["msg"])
	assert.Equal(t, "json", line["component"])
	assert.Equal(t, "abc", line["invocation"])
}

func TestDefaultLogPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/state")
	assert.Equal(t, "/var/state/gerrit-hooks/logs/run.log", DefaultLogPath("run"))
}

func TestFileSinkDefaults(t *testing.T) {
	cfg := FileSinkConfig{}.withDefaults()
	assert.True(t, cfg.enabled())
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 28, cfg.MaxAgeDays)
}

func TestPrettyLogger(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	p := NewPrettyLoggerTo(&buf)

	p.Success("installed 3 hooks")
	p.Path("hooks dir", "/srv/hooks")
	p.Field("skipped", 2)
	p.ErrorPretty("failed", errors.New("boom"))

	assert.Equal(t, "✓ installed 3 hooks\nhooks dir: /srv/hooks\nskipped: 2\n✗ failed: boom\n", buf.String())
}
