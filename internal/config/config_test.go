package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "IntelliTouch", cfg.Controller.Type)
	assert.Equal(t, 6200, cfg.Controller.Comms.NetPort)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
controller:
  type: IntelliCenter
  comms:
    netConnect: true
    netHost: 192.168.1.50
location:
  latitude: 33.45
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "IntelliCenter", cfg.Controller.Type)
	assert.True(t, cfg.Controller.Comms.NetConnect)
	assert.Equal(t, "192.168.1.50", cfg.Controller.Comms.NetHost)
	assert.Equal(t, 33.45, cfg.Location.Latitude)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Controller.Comms.RS485Port, "unset fields keep their default")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controller:\n  comms:\n    netPort: 6200\n"), 0o644))

	t.Setenv("POOL_NET_PORT", "7100")
	t.Setenv("POOL_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Controller.Comms.NetPort)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_WSEnvOverrides(t *testing.T) {
	t.Setenv("POOL_WS_URL", "wss://bridge.local/rs485")
	t.Setenv("POOL_WS_USERNAME", "tech")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "wss://bridge.local/rs485", cfg.Controller.Comms.WSURL)
	assert.Equal(t, "tech", cfg.Controller.Comms.WSUsername)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/bridge.yaml")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Controller.Type, cfg.Controller.Type)
}
