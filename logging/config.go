package logging

// Config defines the structure of the logging section in gerrit-hooks.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the GERRIT_HOOKS_LOG_LEVEL environment variable.
	Level string `yaml:"level"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	// Can be enabled with the GERRIT_HOOKS_LOG_CALLER=true environment variable.
	ReportCaller bool `yaml:"report_caller"`

	File FileSinkConfig `yaml:"file"`

	Format FormatConfig `yaml:"format"`
}

// FileSinkConfig configures the rotating file sink.
type FileSinkConfig struct {
	// Enabled defaults to true; set it to false to log to stderr only.
	Enabled *bool `yaml:"enabled"`
	// Path defaults to DefaultLogPath(component).
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default" (rich text), "simple" (minimal text), or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr controls when structured logs are sent to stderr.
	// Can be "auto" (default), "always", or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}

func (f FileSinkConfig) enabled() bool {
	return f.Enabled == nil || *f.Enabled
}

func (f FileSinkConfig) withDefaults() FileSinkConfig {
	if f.MaxSizeMB <= 0 {
		f.MaxSizeMB = 10
	}
	if f.MaxBackups <= 0 {
		f.MaxBackups = 3
	}
	if f.MaxAgeDays <= 0 {
		f.MaxAgeDays = 28
	}
	return f
}
