package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/port"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*port.Port, *transaction.Engine) {
	t.Helper()
	a, b := port.NewLoopbackPair()
	t.Cleanup(func() { b.Close() })

	p := port.New(port.Config{ID: 0, Name: "bus0"}, port.LoopbackOpener(a))
	decode := func(b byte) (*transaction.Frame, error) {
		return nil, nil
	}
	e := transaction.NewEngine(p, decode, transaction.PacerConfig{}, func(*transaction.Frame) {})
	return p, e
}

func TestBridge_RunAndShutdown(t *testing.T) {
	ports := port.NewRegistry()
	p, engine := newTestEngine(t)
	ports.Add(p)

	change, err := changeengine.New(changeengine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)

	br := New(ports, map[int]*transaction.Engine{0: engine}, nil, change, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		br.Run(ctx)
		close(runDone)
	}()

	cancel()

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	require.NoError(t, br.Shutdown())
}

func TestBridge_Shutdown_WithoutRun(t *testing.T) {
	ports := port.NewRegistry()
	p, engine := newTestEngine(t)
	ports.Add(p)

	change, err := changeengine.New(changeengine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)

	br := New(ports, map[int]*transaction.Engine{0: engine}, nil, change, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go br.Run(ctx)

	require.NoError(t, br.Shutdown())
}
