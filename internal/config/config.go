// Package config loads ontosearch configuration.
//
// Configuration is layered, in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config ($XDG_CONFIG_HOME/ontosearch/config.yaml)
//  3. Project config (.ontosearch.yaml in the working directory)
//  4. Environment variables (ONTOSEARCH_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
	"github.com/Aman-CERP/ontosearch/internal/logging"
	"github.com/Aman-CERP/ontosearch/internal/metadata"
)

// ProjectConfigName is the project-level config file name.
const ProjectConfigName = ".ontosearch.yaml"

// Config is the complete ontosearch configuration.
type Config struct {
	Version int           `yaml:"version"`
	Search  SearchConfig  `yaml:"search"`
	Engine  EngineConfig  `yaml:"engine"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig controls query defaults.
type SearchConfig struct {
	// EnabledTypes lists the search types to index.
	EnabledTypes []string `yaml:"enabled_types"`
	// CaseInsensitive is the default for --ignore-case.
	CaseInsensitive bool `yaml:"case_insensitive"`
	// MaxResults caps printed results (0 = unlimited).
	MaxResults int `yaml:"max_results"`
	// PatternCacheSize bounds the compiled-pattern LRU.
	PatternCacheSize int `yaml:"pattern_cache_size"`
}

// EngineConfig controls the background executor.
type EngineConfig struct {
	// QueueSize bounds pending rebuild and query tasks.
	QueueSize int `yaml:"queue_size"`
	// CancelOnInvalidate aborts a running scan when the document changes.
	CancelOnInvalidate bool `yaml:"cancel_on_invalidate"`
}

// WatchConfig controls ontology file watching.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// NewConfig returns a config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchConfig{
			EnabledTypes:     metadata.AllTypes().Strings(),
			PatternCacheSize: 128,
		},
		Engine: EngineConfig{
			QueueSize: 64,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "300ms",
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      logging.DefaultLogPath(),
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the user configuration file path:
// $XDG_CONFIG_HOME/ontosearch/config.yaml, or ~/.config/ontosearch/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ontosearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "ontosearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "ontosearch", "config.yaml")
}

// Load reads configuration for a working directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if path := filepath.Join(dir, ProjectConfigName); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	return cfg.finish()
}

// LoadFile reads configuration from an explicit file instead of the user and
// project layers. Environment overrides still apply.
func LoadFile(path string) (*Config, error) {
	if !fileExists(path) {
		return nil, ontoerrors.New(ontoerrors.ErrCodeConfigNotFound, "config file not found", nil).
			WithDetail("path", path).
			WithSuggestion("Run 'ontosearch config init' to create one")
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg.finish()
}

func (c *Config) finish() (*Config, error) {
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadYAML decodes path on top of c. Keys absent from the file keep their
// current value, so booleans that default to true can be turned off.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ontoerrors.ConfigError("failed to read config file", err).
			WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return ontoerrors.ConfigError("failed to parse config file", err).
			WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies ONTOSEARCH_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("ONTOSEARCH_ENABLED_TYPES"); v != "" {
		var types []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		c.Search.EnabledTypes = types
	}
	if v := os.Getenv("ONTOSEARCH_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("ONTOSEARCH_QUEUE_SIZE", v, err)
		}
		c.Engine.QueueSize = n
	}
	if v := os.Getenv("ONTOSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ONTOSEARCH_CASE_INSENSITIVE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("ONTOSEARCH_CASE_INSENSITIVE", v, err)
		}
		c.Search.CaseInsensitive = b
	}
	if v := os.Getenv("ONTOSEARCH_WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("ONTOSEARCH_WATCH", v, err)
		}
		c.Watch.Enabled = b
	}
	return nil
}

func envError(name, value string, cause error) error {
	return ontoerrors.ConfigError("invalid environment override", cause).
		WithDetail("variable", name).
		WithDetail("value", value)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level", err.Error())
	}
	if c.Engine.QueueSize < 1 {
		return invalid("engine.queue_size", fmt.Sprintf("must be at least 1, got %d", c.Engine.QueueSize))
	}
	if c.Search.MaxResults < 0 {
		return invalid("search.max_results", fmt.Sprintf("must be non-negative, got %d", c.Search.MaxResults))
	}
	if c.Search.PatternCacheSize < 0 {
		return invalid("search.pattern_cache_size", fmt.Sprintf("must be non-negative, got %d", c.Search.PatternCacheSize))
	}
	if len(c.Search.EnabledTypes) == 0 {
		return invalid("search.enabled_types", "at least one search type must be enabled")
	}
	if _, err := c.Types(); err != nil {
		return err
	}
	if _, err := c.DebounceWindow(); err != nil {
		return invalid("watch.debounce", err.Error())
	}
	return nil
}

func invalid(key, reason string) error {
	return ontoerrors.ConfigError("invalid configuration: "+key+" "+reason, nil).
		WithDetail("key", key)
}

// Types returns the enabled search types as a set.
// Unknown names fail with ERR_407_UNKNOWN_SEARCH_TYPE.
func (c *Config) Types() (metadata.TypeSet, error) {
	return ParseTypes(c.Search.EnabledTypes)
}

// ParseTypes converts type names to a set, rejecting unknown names.
func ParseTypes(names []string) (metadata.TypeSet, error) {
	for _, n := range names {
		if !metadata.SearchType(n).IsBuiltin() {
			return metadata.TypeSet{}, ontoerrors.New(ontoerrors.ErrCodeUnknownSearchType, "unknown search type", nil).
				WithDetail("type", n).
				WithSuggestion("Use one of: " + strings.Join(metadata.AllTypes().Strings(), ", "))
		}
	}
	return metadata.ParseTypeSet(names), nil
}

// DebounceWindow parses watch.debounce.
func (c *Config) DebounceWindow() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative, got %s", d)
	}
	return d, nil
}

// LoggingConfig converts the logging section for logging.Setup.
func (c *Config) LoggingConfig(debug bool) logging.Config {
	lc := logging.Config{
		Level:     c.Logging.Level,
		FilePath:  c.Logging.File,
		MaxSizeMB: c.Logging.MaxSizeMB,
		MaxFiles:  c.Logging.MaxFiles,
	}
	if debug {
		lc.Level = "debug"
		lc.WriteToStderr = true
	}
	return lc
}

// WriteYAML writes the configuration to path, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
