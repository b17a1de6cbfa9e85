package config

import (
	"fmt"
	"time"

	"github.com/grovetools/gerrit-hooks/hooks"
	"github.com/mitchellh/mapstructure"
)

// MaxHandlerTimeout bounds how long a single handler may run. Gerrit runs
// synchronous hooks on its own threads, so a stuck handler stalls the server.
const MaxHandlerTimeout = 10 * time.Minute

// DefaultHandlerTimeout applies to handlers without a timeout.
const DefaultHandlerTimeout = time.Minute

// InstallConfig selects which hooks `install` writes wrappers for.
type InstallConfig struct {
	Only    []string `yaml:"only,omitempty" toml:"only,omitempty" jsonschema:"description=Patterns of external hook names to install (default: all)"`
	Exclude []string `yaml:"exclude,omitempty" toml:"exclude,omitempty" jsonschema:"description=Patterns of external hook names to skip"`
}

// HandlerConfig is one command run when a hook fires.
type HandlerConfig struct {
	Command string   `yaml:"command" toml:"command" jsonschema:"description=Executable to run"`
	Args    []string `yaml:"args,omitempty" toml:"args,omitempty" jsonschema:"description=Arguments passed to the command; hook values arrive via env and stdin"`
	Timeout string   `yaml:"timeout,omitempty" toml:"timeout,omitempty" jsonschema:"description=Maximum run time as a Go duration (default: 1m; max: 10m),example=30s"`
	Dir     string   `yaml:"dir,omitempty" toml:"dir,omitempty" jsonschema:"description=Working directory for the command"`
}

// TimeoutDuration returns the handler's timeout, falling back to DefaultHandlerTimeout.
func (h HandlerConfig) TimeoutDuration() (time.Duration, error) {
	if h.Timeout == "" {
		return DefaultHandlerTimeout, nil
	}
	d, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", h.Timeout, err)
	}
	return d, nil
}

// Config represents the gerrit-hooks.yml configuration
type Config struct {
	Version            string                     `yaml:"version,omitempty" toml:"version,omitempty" jsonschema:"description=Configuration version (e.g. 1.0)"`
	ApprovalCategories []string                   `yaml:"approval_categories,omitempty" toml:"approval_categories,omitempty" jsonschema:"description=Custom approval labels passed to comment-added as --<label> and --<label>-oldValue"`
	HooksDir           string                     `yaml:"hooks_dir,omitempty" toml:"hooks_dir,omitempty" jsonschema:"description=Gerrit site hooks directory used by install and uninstall"`
	Binary             string                     `yaml:"binary,omitempty" toml:"binary,omitempty" jsonschema:"description=Path of the gerrit-hooks binary the installed wrappers exec (default: the running executable)"`
	Install            *InstallConfig             `yaml:"install,omitempty" toml:"install,omitempty" jsonschema:"description=Hook selection for install"`
	Handlers           map[string][]HandlerConfig `yaml:"handlers,omitempty" toml:"handlers,omitempty" jsonschema:"description=Commands to run per hook, keyed by hook name"`

	// Extensions captures all other top-level keys, such as logging.
	Extensions map[string]interface{} `yaml:",inline" toml:"-" jsonschema:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}
}

// HandlersFor returns the handlers configured for h. Keys may use either
// the external or the canonical hook name; both are concatenated in key order.
func (c *Config) HandlersFor(h hooks.Hook) []HandlerConfig {
	var out []HandlerConfig
	for _, key := range []string{h.External(), h.String()} {
		out = append(out, c.Handlers[key]...)
	}
	return out
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded file into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// A missing key leaves the target zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

// ConfigSource identifies the origin of a configuration value.
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceGlobal  ConfigSource = "global"
	SourceProject ConfigSource = "project"
)

// LayeredConfig holds the raw configuration from each source file,
// as well as the final merged configuration, for analysis purposes.
type LayeredConfig struct {
	Default   *Config                 // Config with only default values applied.
	Global    *Config                 // Raw config from the global file.
	Project   *Config                 // Raw config from the project file.
	Final     *Config                 // The fully merged and validated config.
	FilePaths map[ConfigSource]string // Maps sources to their file paths.
}
