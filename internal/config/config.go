package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"disc/internal/logging"
	"disc/pkg/fileops"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "disc" // application name used for config and data directories

const (
	DefaultLogLevel = "warn"
	DefaultDirMode  = "0777"
	DefaultFileMode = "0644"
	configVersion   = "1.0"
)

// Config holds user configuration for disc.
type Config struct {
	// Root is the sandbox root every logical path is resolved against.
	Root     string `yaml:"root"`
	LogLevel string `yaml:"log_level"`
	DirMode  string `yaml:"dir_mode"`  // octal, e.g. "0755"
	FileMode string `yaml:"file_mode"` // octal, e.g. "0644"
	Version  string `yaml:"version"`
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// env lists the variables that may override the file. With the DISC prefix
// they are read as DISC_ROOT, DISC_LOG_LEVEL and DISC_CONFIG_PATH.
type env struct {
	Root       string `envconfig:"ROOT"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	ConfigPath string `envconfig:"CONFIG_PATH"`
}

func loadEnv() (env, error) {
	var e env
	if err := envconfig.Process(strings.ToUpper(APP_NAME), &e); err != nil {
		return env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return e, nil
}

// ConfigPath returns the config file location. DISC_CONFIG_PATH wins over
// the XDG default.
func ConfigPath() (string, error) {
	e, err := loadEnv()
	if err != nil {
		return "", err
	}
	if e.ConfigPath != "" {
		return e.ConfigPath, nil
	}

	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location.
// If no config exists, it returns an error indicating setup is needed.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		return nil, fmt.Errorf("no configuration found at %s, run `disc init` first", configPath)
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path. Fields missing from the file
// keep their defaults.
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigFile returns the path to the config file, and whether it exists.
func FindConfigFile() (string, bool) {
	path, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return path, false
}

// IsFirstRun checks if no configuration has been written yet.
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultRoot is the sandbox root used when nothing else is configured.
func DefaultRoot() string {
	return filepath.Join(xdg.DataHome, APP_NAME)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Root:     DefaultRoot(),
		LogLevel: DefaultLogLevel,
		DirMode:  DefaultDirMode,
		FileMode: DefaultFileMode,
		Version:  configVersion,
		InitTime: 0, // set during first save
	}
}

// ApplyEnv overlays DISC_ROOT and DISC_LOG_LEVEL on top of c.
func (c *Config) ApplyEnv() error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if e.Root != "" {
		logging.Debug("Root overridden from environment", "root", e.Root)
		c.Root = e.Root
	}
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	return nil
}

// Validate checks that the configured modes parse.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root cannot be empty")
	}
	if _, err := c.DirPerm(); err != nil {
		return err
	}
	if _, err := c.FilePerm(); err != nil {
		return err
	}
	return nil
}

// DirPerm returns DirMode as a permission value.
func (c *Config) DirPerm() (os.FileMode, error) {
	return parseMode("dir_mode", c.DirMode, DefaultDirMode)
}

// FilePerm returns FileMode as a permission value.
func (c *Config) FilePerm() (os.FileMode, error) {
	return parseMode("file_mode", c.FileMode, DefaultFileMode)
}

func parseMode(field, value, fallback string) (os.FileMode, error) {
	if value == "" {
		value = fallback
	}
	mode, err := ParseMode(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return mode, nil
}

// ParseMode parses an octal permission string such as "0755" or "0o644".
func ParseMode(value string) (os.FileMode, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(value, "0o"), 8, 32)
	if err != nil || v > 0o7777 {
		return 0, fmt.Errorf("invalid mode %q: expected an octal mode such as 0755", value)
	}
	return os.FileMode(v), nil
}

// Save writes the config to the standard location.
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	if configPath == "" {
		return fmt.Errorf("cannot determine config path")
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SetRoot makes root the sandbox root. The path is expanded and made
// absolute, checked against the reserved locations and created if missing.
// The config is not saved.
func (c *Config) SetRoot(root string) error {
	root = fileops.ExpandPath(root)
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid root %q: %w", root, err)
	}
	if err := ValidateRoot(abs); err != nil {
		return err
	}
	if err := fileops.EnsureDirectoryExists(abs, 0o755); err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}
	c.Root = abs
	return nil
}

// CreateNewConfig initializes a configuration rooted at root, creates the
// root directory and writes the file to path. An empty root means the
// default root, an empty path the standard location.
func CreateNewConfig(root, path string) (*Config, error) {
	cfg := DefaultConfig()
	if root == "" {
		root = cfg.Root
	}
	if err := cfg.SetRoot(root); err != nil {
		return nil, err
	}

	var err error
	if path == "" {
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	logging.Info("Configuration created successfully", "root", cfg.Root)
	return &cfg, nil
}
