package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/board/standalone"
	"github.com/pentacore/bridge/internal/bridge"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/config"
	"github.com/pentacore/bridge/internal/delay"
	"github.com/pentacore/bridge/internal/model"
	"github.com/pentacore/bridge/internal/port"
	"github.com/pentacore/bridge/internal/scheduler"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge against a live controller connection",
	Long: `serve opens the configured transport (native serial, network-bridged
serial, or WebSocket), wires up the Transaction Engine, Board Dispatch,
Change Engine, Delay Manager, and Schedule Executor described by this
bridge's core, and runs until interrupted.

SIGINT and SIGTERM trigger an orderly shutdown bounded by a 5s deadline.
The config file is watched while serve runs: a change is logged and
published as a configuration-reloaded event, but controller and transport
settings take effect only after a restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	br, err := buildBridge(cfg)
	if err != nil {
		return err
	}

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go config.Watch(configPath, func(fresh *config.Config) {
		log.Info().Msg("config file changed; restart the bridge to apply controller/transport changes")
		br.Change.Commit(func(*model.ConfigGraph, *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
			return []changeengine.Event{{Kind: changeengine.KindConfigReloaded}}, 0
		})
	}, stopWatch)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info().Str("controller", cfg.Controller.Type).Msg("bridge starting")
	br.Run(ctx)

	log.Info().Msg("bridge stopped, shutting down")
	return br.Shutdown()
}

// buildBridge assembles every long-lived component from cfg, grounded on
// Thermoquad-heliostat/cmd/control.go's connectionManager setup.
func buildBridge(cfg *config.Config) (*bridge.Bridge, error) {
	change, err := changeengine.New(changeengine.DefaultConfig(cfg.DataDir))
	if err != nil {
		return nil, fmt.Errorf("opening change engine: %w", err)
	}

	dm := delay.NewManager()
	ports := port.NewRegistry()
	engines := make(map[int]*transaction.Engine)

	ctrlType := board.ControllerType(cfg.Controller.Type)
	var b *board.Board

	if ctrlType == board.Standalone {
		codec, err := standalone.New(standalone.PinMap{})
		if err != nil {
			return nil, fmt.Errorf("opening gpio: %w", err)
		}
		b = &board.Board{Type: ctrlType, Codec: codec, Change: change, Delay: dm, HeatRange: heatRangeFor(ctrlType)}
	} else {
		ct, codec, decoder, err := newCodec(cfg.Controller.Type)
		if err != nil {
			return nil, err
		}

		opener, err := openerFor(cfg)
		if err != nil {
			return nil, err
		}

		p := port.New(port.Config{ID: 0, Name: "bus0", OnStateChange: func(s port.State) {
			log.Info().Str("state", s.String()).Msg("port state changed")
		}}, opener)
		ports.Add(p)

		b = &board.Board{Type: ct, Codec: codec, Change: change, Delay: dm, HeatRange: heatRangeFor(ct)}
		engine := transaction.NewEngine(p, decoder, transaction.DefaultPacerConfig(), b.OnSpontaneous())
		engines[0] = engine
	}

	sched := scheduler.New(change.SnapshotConfig, schedulerCommander{b}, nil, cfg.Location.Latitude, cfg.Location.Longitude)

	return bridge.New(ports, engines, b, change, dm, sched), nil
}

// schedulerCommander adapts board.Board's on/off/toggle CircuitAction
// vocabulary to the boolean surface scheduler.CircuitCommander expects.
type schedulerCommander struct {
	b *board.Board
}

func (s schedulerCommander) SetCircuitState(circuitID int, on bool) error {
	action := board.ActionOff
	if on {
		action = board.ActionOn
	}
	return s.b.SetCircuitState(circuitID, action)
}

func openerFor(cfg *config.Config) (port.Opener, error) {
	comms := cfg.Controller.Comms
	if comms.WSURL != "" {
		password := ""
		if comms.WSUsername != "" {
			var err error
			password, err = passwordFromPrompt()
			if err != nil {
				return nil, err
			}
		}
		return port.WebSocketOpener(port.WebSocketConfig{
			URL:           comms.WSURL,
			SkipTLSVerify: comms.WSSkipVerify,
			Username:      comms.WSUsername,
			Password:      password,
		}), nil
	}
	if comms.NetConnect {
		if comms.NetHost == "" {
			return nil, fmt.Errorf("controller.comms.netHost is required when netConnect is true")
		}
		return port.TCPOpener(comms.NetHost, comms.NetPort), nil
	}
	if comms.RS485Port == "" {
		return nil, fmt.Errorf("controller.comms.rs485Port is required when netConnect is false")
	}
	return port.SerialOpener(port.SerialConfig{
		Device:   comms.RS485Port,
		BaudRate: 9600,
		DataBits: 8,
	}), nil
}
