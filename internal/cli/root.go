// Package cli implements the bridge command-line tool: starting the
// running bridge process, driving it against the in-memory simulator,
// probing a bus for attached equipment, decoding a captured byte stream,
// and a terminal monitor.
package cli

import (
	"github.com/pentacore/bridge/internal/config"
	"github.com/pentacore/bridge/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Pool automation protocol bridge",
	Long: `bridge talks RS-485 to a Pentair-family pool controller, maintains the
live equipment model, and exposes it to downstream collaborators (REST,
MQTT, push-socket bindings) over the interfaces defined by the core.

This tool only covers the core: connecting, decoding the wire, and running
the bridge. Downstream bindings are separate processes.`,
	Version:           "0.1.0",
	PersistentPreRunE: initLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to bridge.yaml (defaults built in if omitted)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override the configured log level (trace|debug|info|warn|error)")
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	levelStr := cfg.Log.Level
	if logLevelFlag != "" {
		levelStr = logLevelFlag
	}
	return logging.Init(logging.ParseLevel(levelStr), cfg.Log.Path)
}

// loadConfig re-reads the config file a subcommand was invoked with. It is
// read again here rather than cached from initLogging so a command that
// doesn't need logging (e.g. shell completion) never touches the
// filesystem.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
