package config

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Reloaded is invoked with the freshly loaded Config each time the
// watched file changes.
type Reloaded func(*Config)

// Watch polls path every 500ms comparing mtime and size (no fsnotify
// dependency appears anywhere in the retrieved pack, so this follows the
// same ticker-poll idiom the corpus uses elsewhere, e.g.
// buffercontroller's RunBufferController loop) and calls onReload with a
// freshly merged Config whenever the file changes. It runs until stop is
// closed.
func Watch(path string, onReload Reloaded, stop <-chan struct{}) {
	if path == "" {
		return
	}
	const pollInterval = 500 * time.Millisecond

	var lastModTime time.Time
	var lastSize int64
	if info, err := os.Stat(path); err == nil {
		lastModTime = info.ModTime()
		lastSize = info.Size()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Equal(lastModTime) && info.Size() == lastSize {
				continue
			}
			lastModTime = info.ModTime()
			lastSize = info.Size()

			cfg, err := Load(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping previous configuration")
				continue
			}
			onReload(cfg)
		}
	}
}
