package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/use/internal/errors"
)

const (
	// JSONFileName is the name of the JSON configuration file.
	JSONFileName = "vango-use.json"

	// TOMLFileName is the name of the TOML configuration file.
	TOMLFileName = "vango-use.toml"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultQueueSize is the default loop dispatch queue size.
	DefaultQueueSize = 1024

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vango_use"

	// DefaultFilePath is the default path of the file storage backend.
	DefaultFilePath = ".vango/local.json"
)

// Storage backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendS3     = "s3"
)

// Config represents the complete vango-use configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" toml:"name,omitempty"`

	// Log configures the slog handler.
	Log LogConfig `json:"log" toml:"log"`

	// Runtime configures the event loop.
	Runtime RuntimeConfig `json:"runtime" toml:"runtime"`

	// Storage selects the backend of the local storage area.
	Storage StorageConfig `json:"storage" toml:"storage"`

	// Breakpoints selects a breakpoint preset or custom map.
	Breakpoints BreakpointsConfig `json:"breakpoints" toml:"breakpoints"`

	// Devtools configures the debug HTTP server.
	Devtools DevtoolsConfig `json:"devtools" toml:"devtools"`

	// Metrics configures the Prometheus metrics.
	Metrics MetricsConfig `json:"metrics" toml:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format,omitempty"`
}

// RuntimeConfig configures the event loop.
type RuntimeConfig struct {
	// QueueSize is the dispatch queue capacity.
	QueueSize int `json:"queueSize,omitempty" toml:"queueSize,omitempty"`

	// Debug enables hook order validation.
	Debug bool `json:"debug,omitempty" toml:"debug,omitempty"`
}

// StorageConfig selects and configures the local storage backend.
type StorageConfig struct {
	// Backend is memory, file or s3.
	Backend string `json:"backend,omitempty" toml:"backend,omitempty"`

	File FileStorageConfig `json:"file" toml:"file"`
	S3   S3StorageConfig   `json:"s3" toml:"s3"`
}

// FileStorageConfig configures the file backend.
type FileStorageConfig struct {
	// Path is the JSON document path, relative to the config directory.
	Path string `json:"path,omitempty" toml:"path,omitempty"`

	// Watch enables reporting external writes as storage events.
	Watch bool `json:"watch,omitempty" toml:"watch,omitempty"`
}

// S3StorageConfig configures the S3 backend.
type S3StorageConfig struct {
	Bucket       string `json:"bucket,omitempty" toml:"bucket,omitempty"`
	Prefix       string `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Region       string `json:"region,omitempty" toml:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty" toml:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" toml:"usePathStyle,omitempty"`
}

// BreakpointsConfig selects breakpoints. Custom wins over Preset.
type BreakpointsConfig struct {
	// Preset is tailwind or bootstrap.
	Preset string `json:"preset,omitempty" toml:"preset,omitempty"`

	// Custom maps breakpoint names to minimum widths in pixels.
	Custom map[string]int `json:"custom,omitempty" toml:"custom,omitempty"`
}

// DevtoolsConfig configures the devtools server.
type DevtoolsConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" toml:"addr,omitempty"`

	// Echo enables the websocket echo endpoint.
	Echo bool `json:"echo,omitempty" toml:"echo,omitempty"`
}

// MetricsConfig configures metrics.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" toml:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Runtime: RuntimeConfig{
			QueueSize: DefaultQueueSize,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			File:    FileStorageConfig{Path: DefaultFilePath},
		},
		Breakpoints: BreakpointsConfig{
			Preset: "tailwind",
		},
		Devtools: DevtoolsConfig{
			Addr: DefaultDevtoolsAddr,
			Echo: true,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads configuration from dir, preferring vango-use.json over
// vango-use.toml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("C001").
		WithDetail("No " + JSONFileName + " or " + TOMLFileName + " found in " + dir).
		WithSuggestion("Create " + TOMLFileName + " or pass --config")
}

// LoadFile reads configuration from path. The format follows the file
// extension: .toml is TOML, anything else is JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := New()
	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("C002").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid TOML")
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("C002").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// selects.
func (c *Config) SaveTo(path string) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New("C002").Wrap(err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New("C002").Wrap(err)
		}
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C002").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Runtime.QueueSize == 0 {
		c.Runtime.QueueSize = DefaultQueueSize
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.File.Path == "" {
		c.Storage.File.Path = DefaultFilePath
	}
	if c.Breakpoints.Preset == "" && len(c.Breakpoints.Custom) == 0 {
		c.Breakpoints.Preset = "tailwind"
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("C002").
			WithDetail("log.level must be debug, info, warn or error, got " + c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C002").
			WithDetail("log.format must be text or json, got " + c.Log.Format)
	}
	if c.Runtime.QueueSize < 0 {
		return errors.New("C002").
			WithDetail("runtime.queueSize must not be negative")
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendFile:
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("C002").
				WithDetail("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.New("C003").
			WithDetail("storage.backend is " + c.Storage.Backend)
	}
	if len(c.Breakpoints.Custom) == 0 {
		switch c.Breakpoints.Preset {
		case "tailwind", "bootstrap":
		default:
			return errors.New("C002").
				WithDetail("breakpoints.preset must be tailwind or bootstrap, got " + c.Breakpoints.Preset)
		}
	}
	for name, width := range c.Breakpoints.Custom {
		if width < 0 {
			return errors.New("C002").
				WithDetail("breakpoint " + name + " has a negative width")
		}
	}
	return nil
}

// FilePath returns the absolute path of the file storage backend.
func (c *Config) FilePath() string {
	if filepath.IsAbs(c.Storage.File.Path) {
		return c.Storage.File.Path
	}
	return filepath.Join(c.Dir(), c.Storage.File.Path)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C001").
				WithDetail("No " + JSONFileName + " or " + TOMLFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
