package cli

import (
	"testing"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/config"
	"github.com/pentacore/bridge/internal/delay"
	"github.com/pentacore/bridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerCommander_TranslatesBoolToCircuitAction(t *testing.T) {
	change, err := changeengine.New(changeengine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { change.Shutdown() })

	change.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		cfg.Circuits.Upsert(model.CircuitConfig{ID: 6, Name: "pool light"})
		st.Circuits.Upsert(model.CircuitState{ID: 6, IsOn: false})
		return nil, changeengine.RootConfig | changeengine.RootState
	})

	b := &board.Board{Type: board.Standalone, Change: change, Delay: delay.NewManager()}
	cmdr := schedulerCommander{b}

	assert.Error(t, cmdr.SetCircuitState(999, true))
}

func TestOpenerFor_RequiresTransportConfig(t *testing.T) {
	cfg := &config.Config{}
	_, err := openerFor(cfg)
	assert.Error(t, err)

	cfg.Controller.Comms.NetConnect = true
	_, err = openerFor(cfg)
	assert.Error(t, err, "netHost required")

	cfg.Controller.Comms.NetConnect = false
	cfg.Controller.Comms.RS485Port = "/dev/ttyUSB0"
	_, err = openerFor(cfg)
	assert.NoError(t, err)
}
