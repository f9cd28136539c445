package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	ierrors "github.com/Aman-CERP/wordindex/internal/errors"
)

const (
	// ProjectConfigName is the project-level config file, looked up in the working directory.
	ProjectConfigName = ".wordindex.yaml"

	// ProjectConfigAltName is accepted when ProjectConfigName is absent.
	ProjectConfigAltName = ".wordindex.yml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "WORDINDEX_"
)

// Config represents the complete wordindex configuration.
type Config struct {
	Version int           `yaml:"version" json:"version" validate:"gte=1"`
	Batch   BatchConfig   `yaml:"batch" json:"batch"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Scan    ScanConfig    `yaml:"scan" json:"scan"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// BatchConfig configures the batch coordinator.
type BatchConfig struct {
	// MaxBatchSize bounds the worker pool and is the chunk size used when
	// loading a directory.
	MaxBatchSize int `yaml:"max_batch_size" json:"max_batch_size" validate:"gte=1,lte=1024"`

	// Timeout is the budget for a whole batch, not per file.
	Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
}

// IndexConfig configures the shared word index and the line reader.
type IndexConfig struct {
	// MaxLineBytes is the longest line a file may contain.
	MaxLineBytes int `yaml:"max_line_bytes" json:"max_line_bytes" validate:"gte=1024"`

	// Shards is the number of independently locked index partitions.
	Shards int `yaml:"shards" json:"shards" validate:"gte=1,lte=4096"`
}

// SearchConfig configures the search engine.
type SearchConfig struct {
	// CacheSize is the number of cached query results. Negative disables caching.
	CacheSize int `yaml:"cache_size" json:"cache_size" validate:"gte=-1"`
}

// ScanConfig configures directory listing.
type ScanConfig struct {
	Recursive bool     `yaml:"recursive" json:"recursive"`
	Exclude   []string `yaml:"exclude" json:"exclude"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb" validate:"gte=1"`
	MaxFiles  int    `yaml:"max_files" json:"max_files" validate:"gte=1"`
}

// UIConfig configures terminal output.
type UIConfig struct {
	Plain   bool `yaml:"plain" json:"plain"`
	NoColor bool `yaml:"no_color" json:"no_color"`
}

// MetricsConfig configures metrics export.
type MetricsConfig struct {
	// Textfile, when set, receives a Prometheus textfile dump after each run.
	Textfile string `yaml:"textfile" json:"textfile"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Batch: BatchConfig{
			MaxBatchSize: 2,
			Timeout:      60 * time.Second,
		},
		Index: IndexConfig{
			MaxLineBytes: 1024 * 1024,
			Shards:       32,
		},
		Search: SearchConfig{
			CacheSize: 256,
		},
		Scan: ScanConfig{
			Recursive: false,
			Exclude:   []string{},
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows the XDG Base Directory layout:
//   - $XDG_CONFIG_HOME/wordindex/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/wordindex/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wordindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "wordindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "wordindex", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var cfg Config
	if err := readYAML(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration for the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/wordindex/config.yaml)
//  3. Project config (.wordindex.yaml in dir)
//  4. Environment variables (WORDINDEX_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := loadUserConfig()
	if err != nil {
		return nil, ierrors.ConfigError(fmt.Sprintf("failed to load user config: %v", err), err)
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, ierrors.ConfigError(err.Error(), err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, ierrors.ConfigError(err.Error(), err).
			WithSuggestion("Check the " + EnvPrefix + "* environment variables")
	}

	if err := cfg.Validate(); err != nil {
		return nil, ierrors.ConfigError(fmt.Sprintf("invalid configuration: %v", err), err).
			WithSuggestion("Run 'wordindex config show' to inspect the effective settings")
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if neither
// name exists.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigName, ProjectConfigAltName} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadFromFile merges .wordindex.yaml or .wordindex.yml from dir, if present.
func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}

	var parsed Config
	if err := readYAML(path, &parsed); err != nil {
		return err
	}
	c.mergeWith(&parsed)
	return nil
}

func readYAML(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Batch.MaxBatchSize != 0 {
		c.Batch.MaxBatchSize = other.Batch.MaxBatchSize
	}
	if other.Batch.Timeout != 0 {
		c.Batch.Timeout = other.Batch.Timeout
	}

	if other.Index.MaxLineBytes != 0 {
		c.Index.MaxLineBytes = other.Index.MaxLineBytes
	}
	if other.Index.Shards != 0 {
		c.Index.Shards = other.Index.Shards
	}

	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}

	// Booleans can only be switched on by a file
	if other.Scan.Recursive {
		c.Scan.Recursive = true
	}
	if len(other.Scan.Exclude) > 0 {
		c.Scan.Exclude = append(c.Scan.Exclude, other.Scan.Exclude...)
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.UI.Plain {
		c.UI.Plain = true
	}
	if other.UI.NoColor {
		c.UI.NoColor = true
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}

// applyEnvOverrides applies WORDINDEX_* environment variable overrides.
// Unlike files, env vars can switch booleans off.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"MAX_BATCH_SIZE", &c.Batch.MaxBatchSize},
		{"MAX_LINE_BYTES", &c.Index.MaxLineBytes},
		{"SHARDS", &c.Index.Shards},
		{"CACHE_SIZE", &c.Search.CacheSize},
	}
	for _, o := range ints {
		v := os.Getenv(EnvPrefix + o.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s must be an integer, got %q", EnvPrefix, o.name, v)
		}
		*o.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"RECURSIVE", &c.Scan.Recursive},
		{"PLAIN", &c.UI.Plain},
		{"NO_COLOR", &c.UI.NoColor},
	}
	for _, o := range bools {
		v := os.Getenv(EnvPrefix + o.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s must be a boolean, got %q", EnvPrefix, o.name, v)
		}
		*o.dst = b
	}

	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sTIMEOUT must be a duration like 30s, got %q", EnvPrefix, v)
		}
		c.Batch.Timeout = d
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvPrefix + "METRICS_FILE"); v != "" {
		c.Metrics.Textfile = v
	}
	return nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// configValidator returns the shared validator, reporting fields by their yaml name.
func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if err := configValidator().Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			if fe.Param() != "" {
				return fmt.Errorf("%s must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
			}
			return fmt.Errorf("%s must satisfy %s, got %v", field, fe.Tag(), fe.Value())
		}
		return err
	}

	for _, p := range c.Scan.Exclude {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("scan.exclude pattern %q is invalid: %w", p, err)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
