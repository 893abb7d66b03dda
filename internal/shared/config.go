package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Search   ScanConfig     `toml:"search"`
	Archive  ArchiveConfig  `toml:"archive"`
	Backend  BackendConfig  `toml:"backend"`
	Database DatabaseConfig `toml:"database"`
}

// ScanConfig controls where projects are searched for and which files count as projects.
type ScanConfig struct {
	PathsFile   string   `toml:"paths_file"`
	DefaultRoot string   `toml:"default_root"`
	Extensions  []string `toml:"extensions"`
}

// ArchiveConfig controls archive output and run pacing.
type ArchiveConfig struct {
	OutputDir  string   `toml:"output_dir"`
	ExitDelay  Duration `toml:"exit_delay"`
	LaunchRate float64  `toml:"launch_rate"`
}

// BackendConfig selects and binds the automation backend.
//
// It is handed to the backend loader once at startup, the factory it returns owns the binding.
type BackendConfig struct {
	Name         string            `toml:"name"`
	Version      string            `toml:"version"`
	Command      string            `toml:"command"`
	Args         []string          `toml:"args"`
	LibraryPaths map[string]string `toml:"library_paths"`
}

// DatabaseConfig contains run history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	Disabled     bool   `toml:"disabled"`
}

// Duration is a [time.Duration] that reads and writes as a string such as "3s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
//
// The returned error is non-nil only when the file exists but cannot be used; the config is still usable.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	config, err := LoadConfig(path)
	if err != nil {
		return DefaultConfig(), err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate reports configuration values that would make a run meaningless.
func (c *Config) Validate() error {
	if len(c.Search.Extensions) == 0 {
		return fmt.Errorf("%w: search.extensions must not be empty", ErrInvalidConfig)
	}
	if c.Archive.ExitDelay.Duration < 0 {
		return fmt.Errorf("%w: archive.exit_delay must not be negative", ErrInvalidConfig)
	}
	if c.Archive.LaunchRate < 0 {
		return fmt.Errorf("%w: archive.launch_rate must not be negative", ErrInvalidConfig)
	}
	if c.Backend.Name == "" {
		return fmt.Errorf("%w: backend.name is required", ErrInvalidConfig)
	}
	return nil
}

// DefaultRootDir returns the configured default root, or the user's Desktop directory.
func (s ScanConfig) DefaultRootDir() string {
	if s.DefaultRoot != "" {
		return s.DefaultRoot
	}
	return userDir("Desktop")
}

// PathsFilePath returns the configured paths file, or paths.txt in the user's Documents directory.
func (s ScanConfig) PathsFilePath() string {
	if s.PathsFile != "" {
		return s.PathsFile
	}
	return filepath.Join(userDir("Documents"), "paths.txt")
}

// OutputDirOr returns the configured output directory, or fallback when none is set.
func (a ArchiveConfig) OutputDirOr(fallback string) string {
	if a.OutputDir != "" {
		return a.OutputDir
	}
	return fallback
}

// userDir resolves a well-known directory under the user's home, falling back to the working directory.
func userDir(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}
