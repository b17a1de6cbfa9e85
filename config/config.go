package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/gerrit-hooks/errors"
	"github.com/grovetools/gerrit-hooks/util/pathutil"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched in order in every directory.
var configNames = []string{
	"gerrit-hooks.yml",
	"gerrit-hooks.yaml",
	".gerrit-hooks.yml",
	"gerrit-hooks.toml",
}

// Load reads, validates and parses a single configuration file.
func Load(path string) (*Config, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return finalize(doc, path)
}

// LoadFromBytes parses YAML configuration from a byte array.
func LoadFromBytes(data []byte) (*Config, error) {
	doc, err := decodeDocument(data, "")
	if err != nil {
		return nil, err
	}
	return finalize(doc, "")
}

// LoadDefault finds and loads the configuration for the current directory:
// 1. Global config (~/.config/gerrit-hooks/gerrit-hooks.yml) - base layer
// 2. Project config (gerrit-hooks.yml) - overrides global
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return LoadFromWithLogger(startDir, logger)
}

// LoadFromWithLogger loads configuration with hierarchical merging and logging.
// A missing project file is not an error when a global file exists.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	projectPath, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}

	var finalConfig *Config

	globalPath := GlobalConfigPath()
	if globalPath != "" && !samePath(globalPath, projectPath) {
		if _, err := os.Stat(globalPath); err == nil {
			logger.WithField("path", globalPath).Debug("Loading global configuration")
			globalConfig, err := loadRaw(globalPath)
			if err != nil {
				logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
			} else {
				finalConfig = globalConfig
			}
		}
	}

	logger.WithField("path", projectPath).Debug("Loading project configuration")
	projectConfig, err := loadRaw(projectPath)
	if err != nil {
		return nil, err
	}

	if finalConfig == nil {
		finalConfig = projectConfig
	} else {
		logger.Debug("Merging project configuration over global configuration")
		finalConfig = mergeConfigs(finalConfig, projectConfig)
	}

	finalConfig.SetDefaults()
	if err := finalConfig.Validate(); err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(finalConfig); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(data))
		}
	}

	return finalConfig, nil
}

// FindConfigFile searches for a configuration file with the following precedence:
// 1. Start directory up to filesystem root
// 2. XDG config directory (~/.config/gerrit-hooks/gerrit-hooks.yml)
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if xdgConfigPath := GlobalConfigPath(); xdgConfigPath != "" {
		if info, err := os.Stat(xdgConfigPath); err == nil && !info.IsDir() {
			return xdgConfigPath, nil
		}
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

// LoadLayered finds and loads every configuration layer without merging
// them, and also computes the final merged config.
func LoadLayered(startDir string) (*LayeredConfig, error) {
	layered := &LayeredConfig{
		Default:   Default(),
		FilePaths: make(map[ConfigSource]string),
	}

	globalPath := GlobalConfigPath()
	if globalPath != "" {
		if _, err := os.Stat(globalPath); err == nil {
			globalConfig, err := loadRaw(globalPath)
			if err != nil {
				return nil, err
			}
			layered.Global = globalConfig
			layered.FilePaths[SourceGlobal] = globalPath
		}
	}

	projectPath, err := FindConfigFile(startDir)
	switch {
	case err == nil && !samePath(projectPath, globalPath):
		projectConfig, err := loadRaw(projectPath)
		if err != nil {
			return nil, err
		}
		layered.Project = projectConfig
		layered.FilePaths[SourceProject] = projectPath
	case err != nil && !errors.Is(err, errors.ErrCodeConfigNotFound):
		return nil, err
	}

	final := &Config{}
	if layered.Global != nil {
		final = mergeConfigs(final, layered.Global)
	}
	if layered.Project != nil {
		final = mergeConfigs(final, layered.Project)
	}
	final.SetDefaults()
	if err := final.Validate(); err != nil {
		return nil, err
	}
	layered.Final = final

	return layered, nil
}

// loadRaw reads and schema-validates one file without defaults or
// semantic validation.
func loadRaw(path string) (*Config, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if err := validateDocument(doc, path); err != nil {
		return nil, err
	}
	cfg, err := fromDocument(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config").
			WithDetail("path", path)
	}
	return cfg, nil
}

func readDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	return decodeDocument(data, path)
}

// decodeDocument expands environment variables and decodes YAML, or TOML
// when path ends in .toml, into a generic document.
func decodeDocument(data []byte, path string) (map[string]interface{}, error) {
	expanded := []byte(expandEnvVars(string(data)))

	doc := make(map[string]interface{})
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(expanded, &doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration").
				WithDetail("path", path)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(expanded, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration").
			WithDetail("path", path)
	}
	return doc, nil
}

// fromDocument converts a generic document into a Config, keeping unknown
// keys as extensions.
func fromDocument(doc map[string]interface{}) (*Config, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates doc against the schema, then applies defaults and
// semantic validation.
func finalize(doc map[string]interface{}, path string) (*Config, error) {
	if err := validateDocument(doc, path); err != nil {
		return nil, err
	}

	cfg, err := fromDocument(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config").
			WithDetail("path", path)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateDocument(doc map[string]interface{}, path string) error {
	validator, err := NewSchemaValidator()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create validator")
	}
	if err := validator.Validate(doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed").
			WithDetail("path", path)
	}
	return nil
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// GlobalConfigPath returns the path of the user-wide configuration file,
// $XDG_CONFIG_HOME/gerrit-hooks/gerrit-hooks.yml.
func GlobalConfigPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "gerrit-hooks", "gerrit-hooks.yml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "gerrit-hooks", "gerrit-hooks.yml")
	}

	return ""
}

// samePath reports whether a and b name the same file, following symlinks.
func samePath(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	same, err := pathutil.ComparePaths(a, b)
	return err == nil && same
}
