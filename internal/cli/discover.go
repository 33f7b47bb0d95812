package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/delay"
	"github.com/pentacore/bridge/internal/port"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/spf13/cobra"
)

var discoverTimeout int

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 5, "seconds to wait for configuration and status to populate")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Request configuration and status from the attached controller",
	Long: `discover opens the configured transport, issues requestConfiguration and
requestStatus, and prints a summary of every circuit, body, pump,
heater, and chlorinator the controller reports.

Exit codes:
  0 - at least one entity discovered
  1 - connected but nothing reported within the timeout
  2 - could not open the transport`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ct, codec, decoder, err := newCodec(cfg.Controller.Type)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unsupported controller type: %v\n", err)
		os.Exit(2)
	}

	opener, err := openerFor(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connection error: %v\n", err)
		os.Exit(2)
	}

	change, err := changeengine.New(changeengine.DefaultConfig(cfg.DataDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening change engine: %v\n", err)
		os.Exit(2)
	}
	defer change.Shutdown()

	p := port.New(port.Config{ID: 0, Name: "discover"}, opener)
	defer p.Close()
	if p.State() != port.StateOpen {
		fmt.Fprintf(os.Stderr, "connection error: could not open %s\n", cfg.Controller.Comms.RS485Port)
		os.Exit(2)
	}

	b := &board.Board{Type: ct, Codec: codec, Change: change, Delay: delay.NewManager(), HeatRange: heatRangeFor(ct)}
	engine := transaction.NewEngine(p, decoder, transaction.DefaultPacerConfig(), b.OnSpontaneous())
	b.Engine = engine

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)
	defer engine.Stop()

	fmt.Printf("Pool Bridge - Discovery\n")
	fmt.Printf("Controller: %s\n", cfg.Controller.Type)
	fmt.Printf("Timeout: %ds\n\n", discoverTimeout)

	if msg, err := codec.EncodeRequestConfiguration(""); err == nil {
		result := make(chan *transaction.MatchResult, 1)
		engine.Enqueue(&transaction.Outbound{Priority: transaction.PrioritySystem, Frame: msg.Frame, ExpectedPeer: msg.ExpectedPeer, ExpectedAction: msg.ExpectedAction, CorrelatingID: msg.CorrelatingID, OnResult: func(r *transaction.MatchResult) { result <- r }})
		<-result
	}
	if msg, err := codec.EncodeRequestStatus(""); err == nil {
		result := make(chan *transaction.MatchResult, 1)
		engine.Enqueue(&transaction.Outbound{Priority: transaction.PrioritySystem, Frame: msg.Frame, ExpectedPeer: msg.ExpectedPeer, ExpectedAction: msg.ExpectedAction, CorrelatingID: msg.CorrelatingID, OnResult: func(r *transaction.MatchResult) { result <- r }})
		<-result
	}

	time.Sleep(time.Duration(discoverTimeout) * time.Second)

	cfgGraph := change.SnapshotConfig()
	circuits := cfgGraph.Circuits.All()
	bodies := cfgGraph.Bodies.All()
	pumps := cfgGraph.Pumps.All()
	heaters := cfgGraph.Heaters.All()

	total := len(circuits) + len(bodies) + len(pumps) + len(heaters)
	fmt.Printf("Circuits: %d\n", len(circuits))
	for _, c := range circuits {
		fmt.Printf("  [%d] %s\n", c.ID, c.Name)
	}
	fmt.Printf("Bodies: %d\n", len(bodies))
	for _, bd := range bodies {
		fmt.Printf("  [%d] %s\n", bd.ID, bd.Name)
	}
	fmt.Printf("Pumps: %d\n", len(pumps))
	fmt.Printf("Heaters: %d\n", len(heaters))

	if total == 0 {
		fmt.Println("\nNo entities reported within the timeout.")
		os.Exit(1)
	}
	return nil
}
