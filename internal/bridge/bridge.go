// Package bridge assembles the Port, Transaction Engine, Board, Change
// Engine, Delay Manager, and Scheduler into one running process and
// tears them down in a fixed order on shutdown, per spec §5. Grounded on
// Thermoquad-heliostat/cmd/control.go's runControl/connectionManager,
// which owns the same shape of problem (one connection, reader
// goroutines, a done channel signaling shutdown) scaled here to one
// bridge owning many ports.
package bridge

import (
	"context"
	"time"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/delay"
	"github.com/pentacore/bridge/internal/port"
	"github.com/pentacore/bridge/internal/scheduler"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/rs/zerolog/log"
)

// ShutdownDeadline bounds the teardown sequence (spec §5: "5s hard
// shutdown deadline").
const ShutdownDeadline = 5 * time.Second

// Bridge owns every long-lived component for one controller connection
// and tears them down in reverse startup order.
type Bridge struct {
	Ports     *port.Registry
	Engines   map[int]*transaction.Engine
	Board     *board.Board
	Change    *changeengine.Engine
	Delay     *delay.Manager
	Scheduler *scheduler.Scheduler

	cancel context.CancelFunc
	done   chan struct{}
}

// New wires the already-constructed components into a Bridge. Callers
// are responsible for constructing each component (choosing the board
// variant, opening ports, loading persisted state) since that wiring is
// specific to the deployment's config.
func New(ports *port.Registry, engines map[int]*transaction.Engine, b *board.Board, change *changeengine.Engine, dm *delay.Manager, sched *scheduler.Scheduler) *Bridge {
	return &Bridge{
		Ports:     ports,
		Engines:   engines,
		Board:     b,
		Change:    change,
		Delay:     dm,
		Scheduler: sched,
		done:      make(chan struct{}),
	}
}

// Run starts the transaction engines and the scheduler and blocks until
// the context is cancelled or Shutdown is called.
func (br *Bridge) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	br.cancel = cancel

	for _, e := range br.Engines {
		go e.Run(ctx)
	}
	if br.Scheduler != nil {
		go br.Scheduler.Run(ctx)
	}

	<-ctx.Done()
	close(br.done)
}

// Shutdown tears the bridge down in reverse dependency order: stop
// accepting new schedule-driven intents, drain in-flight transactions,
// close transaction engines, close ports, then flush persistence. The
// whole sequence is bounded by ShutdownDeadline; if it is exceeded,
// Shutdown returns the context's deadline-exceeded error but still
// attempts every remaining step.
func (br *Bridge) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownDeadline)
	defer cancel()

	if br.cancel != nil {
		br.cancel()
	}

	var deadlineErr error
	select {
	case <-br.done:
	case <-ctx.Done():
		deadlineErr = ctx.Err()
		log.Warn().Msg("shutdown deadline exceeded waiting for run loop to exit")
	}

	for _, e := range br.Engines {
		e.Stop()
	}
	if br.Ports != nil {
		if err := br.Ports.CloseAll(); err != nil {
			log.Warn().Err(err).Msg("one or more ports failed to close cleanly")
		}
	}
	if br.Change != nil {
		if err := br.Change.Shutdown(); err != nil {
			log.Error().Err(err).Msg("final persistence flush failed during shutdown")
			return err
		}
	}
	return deadlineErr
}
