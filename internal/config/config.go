// ABOUTME: CLI configuration loading
// ABOUTME: Merges TOML config files, a .env file and OGGPLAY_* environment overrides
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName = "oggplay"

	// EnvPrefix marks environment variables that override config keys
	EnvPrefix = "OGGPLAY_"
)

// Config holds CLI configuration
type Config struct {
	Output      string `koanf:"output"`       // "oto", "malgo", "portaudio" or "null"
	BufferMs    int    `koanf:"buffer_ms"`    // ring buffer size (100-500)
	BlockFrames int    `koanf:"block_frames"` // frames decoded per block
	Volume      int    `koanf:"volume"`       // 0-100
	LogFile     string `koanf:"log_file"`
	TUI         bool   `koanf:"tui"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Output:      "oto",
		BufferMs:    250,
		BlockFrames: 1024,
		Volume:      100,
		LogFile:     "oggplay.log",
		TUI:         true,
	}
}

// Load reads configuration from the standard locations
func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(getConfigPaths(), os.Environ())
}

// LoadFrom merges the given config files (later files win) and then the
// OGGPLAY_* entries of environ over the defaults.
func LoadFrom(paths []string, environ []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if err := k.Set(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	// environment values arrive as strings; koanf decodes them weakly
	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.Output {
	case "oto", "malgo", "portaudio", "null":
	default:
		return fmt.Errorf("unknown output %q (expected oto, malgo, portaudio or null)", c.Output)
	}
	if c.BufferMs < 100 || c.BufferMs > 500 {
		return fmt.Errorf("buffer_ms %d out of range (100-500)", c.BufferMs)
	}
	if c.BlockFrames <= 0 {
		return fmt.Errorf("block_frames must be positive, got %d", c.BlockFrames)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume %d out of range (0-100)", c.Volume)
	}
	return nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/oggplay/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./oggplay.toml (highest priority)
		appName + ".toml",
	}
}
