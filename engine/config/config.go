package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned by Validate and Load for out of range settings.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the settings of the shader precache tool.
type Config struct {
	// ShaderDir holds the WGSL shader sources.
	ShaderDir string `toml:"shader_dir"`
	// TechniqueDir holds the technique descriptions.
	TechniqueDir string `toml:"technique_dir"`
	// PrecacheFile is the file combinations are dumped to.
	PrecacheFile string `toml:"precache_file"`
	// ReplayFile, when set, is a precache document compiled before the techniques.
	ReplayFile string `toml:"replay_file"`

	// Backend is "wgpu" or "headless".
	Backend              string `toml:"backend"`
	Desktop              bool   `toml:"desktop"`
	ForceFallbackAdapter bool   `toml:"force_fallback_adapter"`
	ProgramCacheSize     int    `toml:"program_cache_size"`
	Workers              int    `toml:"workers"`

	// VSDefines and PSDefines are appended to every vertex and pixel variation.
	VSDefines string `toml:"vs_defines"`
	PSDefines string `toml:"ps_defines"`

	Watch            bool `toml:"watch"`
	ReloadIntervalMS int  `toml:"reload_interval_ms"`

	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ShaderDir:        "shaders",
		TechniqueDir:     "techniques",
		PrecacheFile:     "precache.xml",
		Backend:          "headless",
		Desktop:          true,
		ProgramCacheSize: 256,
		Workers:          4,
		ReloadIntervalMS: 500,
		LogLevel:         "info",
	}
}

// Load reads a TOML file over the defaults. Keys the file leaves out keep their default value,
// unknown keys are an error.
//
// Parameters:
//   - path: the configuration file
//
// Returns:
//   - Config: the merged configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the value ranges of the configuration.
func (c Config) Validate() error {
	switch {
	case c.Backend != "wgpu" && c.Backend != "headless":
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	case c.ProgramCacheSize <= 0:
		return fmt.Errorf("%w: program_cache_size must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Watch && c.ReloadIntervalMS <= 0:
		return fmt.Errorf("%w: reload_interval_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

// Level maps LogLevel to a slog level. Unknown values select info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Encode renders the configuration as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
