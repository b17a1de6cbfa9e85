// Package logging provides per-component logrus loggers configured from the
// logging section of gerrit-hooks.yml.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/gerrit-hooks/config"
	"github.com/grovetools/gerrit-hooks/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envLevel  = "GERRIT_HOOKS_LOG_LEVEL"
	envCaller = "GERRIT_HOOKS_LOG_CALLER"
	envDebug  = "GERRIT_HOOKS_DEBUG"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// Loggers are created once per component.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	if cfg, err := config.LoadDefault(); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := New(component, logCfg, os.Stderr)
	loggers[component] = entry
	return entry
}

// New builds an uncached logger for component from logCfg. Structured
// output goes to the file sink and, depending on the stderr mode, to stderr.
func New(component string, logCfg Config, stderr io.Writer) *logrus.Entry {
	logger := logrus.New()

	levelStr := "info"
	if v := os.Getenv(envLevel); v != "" {
		levelStr = v
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv(envCaller) == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	if sink := fileSink(component, logCfg.File); sink != nil {
		writers = append(writers, sink)
	}

	if shouldLogToStderr(logCfg.Format.StructuredToStderr, logger.GetLevel(), stderr) {
		writers = append(writers, stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

// fileSink opens the rotating log file, or returns nil when the sink is
// disabled or its directory cannot be created.
func fileSink(component string, fileCfg FileSinkConfig) io.Writer {
	if !fileCfg.enabled() {
		return nil
	}

	path := DefaultLogPath(component)
	if fileCfg.Path != "" {
		if expanded, err := pathutil.Expand(fileCfg.Path); err == nil {
			path = expanded
		} else {
			path = fileCfg.Path
		}
	}
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		// Hooks must not fail because the log directory is unwritable.
		return nil
	}

	fileCfg = fileCfg.withDefaults()
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileCfg.MaxSizeMB,
		MaxBackups: fileCfg.MaxBackups,
		MaxAge:     fileCfg.MaxAgeDays,
		Compress:   fileCfg.Compress,
		LocalTime:  true,
	}
}

// shouldLogToStderr resolves the stderr mode. In "auto" mode structured logs
// reach stderr when debugging or when stderr is not an interactive
// terminal, which is the case when Gerrit runs a hook.
func shouldLogToStderr(mode string, level logrus.Level, stderr io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv(envDebug) == "1" || level >= logrus.DebugLevel {
		return true
	}
	f, ok := stderr.(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// DefaultLogPath returns $XDG_STATE_HOME/gerrit-hooks/logs/<component>.log,
// falling back to ~/.local/state.
func DefaultLogPath(component string) string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "gerrit-hooks", "logs", component+".log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "gerrit-hooks", "logs", component+".log")
}
