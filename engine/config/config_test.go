package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oxyprecache.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.Equal(t, slog.LevelInfo, Default().Level())
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
shader_dir = "assets/shaders"
backend = "wgpu"
desktop = false
vs_defines = "INSTANCED"
log_level = "debug"
`))
	require.NoError(t, err)
	assert.Equal(t, "assets/shaders", cfg.ShaderDir)
	assert.Equal(t, "wgpu", cfg.Backend)
	assert.False(t, cfg.Desktop)
	assert.Equal(t, "INSTANCED", cfg.VSDefines)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	assert.Equal(t, "techniques", cfg.TechniqueDir)
	assert.Equal(t, 256, cfg.ProgramCacheSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `shader_dir = `))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `shaders = "x"`))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Load(writeConfig(t, `backend = "vulkan"`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeConfig(t, "watch = true\nreload_interval_ms = 0"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.PSDefines = "SHADOW"
	data, err := cfg.Encode()
	require.NoError(t, err)

	loaded, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
