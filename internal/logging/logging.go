package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs the package-level zerolog logger. When logPath is empty,
// output goes to stderr in console-writer form; otherwise it is appended to
// the given file as structured JSON.
func Init(level zerolog.Level, logPath string) error {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", logPath, err)
		}
		w = zerolog.MultiLevelWriter(f)
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	if level == zerolog.DebugLevel {
		log.Debug().Msg("log level set to debug")
	}
	return nil
}

// ParseLevel maps the POOL_LOG_LEVEL environment value to a zerolog.Level,
// defaulting to info on an unrecognized string.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
