package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("controller:\n  type: IntelliTouch\n"), 0o644))

	reloaded := make(chan *Config, 1)
	stop := make(chan struct{})
	defer close(stop)
	go Watch(path, func(c *Config) { reloaded <- c }, stop)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("controller:\n  type: IntelliCenter\n"), 0o644))

	select {
	case cfg := <-reloaded:
		require.Equal(t, "IntelliCenter", cfg.Controller.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
