package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buildsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[simulation]
seed = 42
workers = 2
debug_fast_spawn = true
tick_rate = "50ms"

[persist]
timeout = "2s"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(42), cfg.Simulation.Seed)
	assert.Equal(t, 2, cfg.Simulation.Workers)
	assert.True(t, cfg.Simulation.DebugFastSpawn)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, 2*time.Second, cfg.Persist.Timeout)
	assert.Equal(t, 128, cfg.Simulation.BatchSize)
	assert.Equal(t, uint32(64), cfg.Simulation.FramesPerTick)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[simulation]
workers = 0

[logging]
format = "xml"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Workers")
	assert.Contains(t, err.Error(), "Format")
}

func TestLoad_DatabaseDSNRequiredWhenEnabled(t *testing.T) {
	path := writeConfig(t, `
[database]
enabled = true
dsn = ""
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoad_MalformedToml(t *testing.T) {
	_, err := Load(writeConfig(t, "[simulation\nseed = 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/buildsim.toml")
	assert.Equal(t, "custom.toml", ResolvePath("custom.toml"))
	assert.Equal(t, "/etc/buildsim.toml", ResolvePath(""))
}
