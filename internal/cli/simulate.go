package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/bridge"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/delay"
	"github.com/pentacore/bridge/internal/port"
	"github.com/pentacore/bridge/internal/scheduler"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/pentacore/bridge/internal/wire/pentair16"
	"github.com/pentacore/bridge/internal/wire/pentair2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var simulateType string

func init() {
	simulateCmd.Flags().StringVar(&simulateType, "type", "IntelliTouch", "controller type to simulate")
	rootCmd.AddCommand(simulateCmd)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the bridge against an in-memory fake controller",
	Long: `simulate wires the bridge to a loopback port instead of a real RS-485
line. A goroutine standing in for the controller answers every outbound
frame with an immediate action-0x01 acknowledgement, so the full stack
(Transaction Engine, Board Dispatch, Change Engine, Scheduler) runs
without a controller attached. Intents that await any other reply action
get no match and end in a NoResponse error.

Useful for exercising the CLI, a downstream binding, or the monitor TUI
without a controller attached.`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Controller.Type = simulateType

	ct, codec, decoder, err := newCodec(simulateType)
	if err != nil {
		return err
	}

	change, err := changeengine.New(changeengine.DefaultConfig(cfg.DataDir))
	if err != nil {
		return fmt.Errorf("opening change engine: %w", err)
	}
	dm := delay.NewManager()
	ports := port.NewRegistry()

	sideA, sideB := port.NewLoopbackPair()
	pa := port.New(port.Config{ID: 0, Name: "sim-bus"}, port.LoopbackOpener(sideA))
	ports.Add(pa)

	b := &board.Board{Type: ct, Codec: codec, Change: change, Delay: dm, HeatRange: heatRangeFor(ct)}
	engine := transaction.NewEngine(pa, decoder, transaction.DefaultPacerConfig(), b.OnSpontaneous())
	b.Engine = engine

	peerCtx, stopPeer := context.WithCancel(context.Background())
	defer stopPeer()
	go runFakeController(peerCtx, ct, sideB)

	sched := scheduler.New(change.SnapshotConfig, schedulerCommander{b}, nil, cfg.Location.Latitude, cfg.Location.Longitude)
	br := bridge.New(ports, map[int]*transaction.Engine{0: engine}, b, change, dm, sched)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info().Str("controller", simulateType).Msg("simulator starting")
	br.Run(ctx)
	return br.Shutdown()
}

// runFakeController stands in for the controller side of the RS-485
// segment: it decodes every inbound frame and immediately answers from the
// frame's destination address with an action-0x01 acknowledgement. That
// satisfies the Transaction Engine's matcher for intents whose codec
// expects action 0x01; intents that await any other reply action are not
// matched.
func runFakeController(ctx context.Context, ct board.ControllerType, conn *port.Loopback) {
	defer conn.Close()

	if ct == board.IntelliCenter {
		runFakePentair2Peer(ctx, conn)
		return
	}
	runFakePentair16Peer(ctx, conn)
}

func runFakePentair16Peer(ctx context.Context, conn *port.Loopback) {
	dec := pentair16.NewDecoder()
	buf := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := conn.Read(buf)
		if err != nil || n == 0 {
			return
		}
		pkt, err := dec.DecodeByte(buf[0])
		if err != nil || pkt == nil {
			continue
		}
		reply := pentair16.NewPacket(0x00, pkt.Src, pkt.Dest, 0x01, nil)
		out, err := pentair16.Encode(reply)
		if err != nil {
			continue
		}
		_, _ = conn.Write(out)
	}
}

func runFakePentair2Peer(ctx context.Context, conn *port.Loopback) {
	dec := pentair2.NewDecoder()
	buf := make([]byte, 1)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := conn.Read(buf)
		if err != nil || n == 0 {
			return
		}
		pkt, err := dec.DecodeByte(buf[0])
		if err != nil || pkt == nil {
			continue
		}
		reply := pentair2.NewPacket(pkt.Src, pkt.Dest, 0x01, nil)
		out, err := pentair2.Encode(reply)
		if err != nil {
			continue
		}
		_, _ = conn.Write(out)
	}
}
