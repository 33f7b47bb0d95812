package board

import (
	"context"
	"testing"
	"time"

	"github.com/pentacore/bridge/internal/bridgeerr"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/delay"
	"github.com/pentacore/bridge/internal/model"
	"github.com/pentacore/bridge/internal/port"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCodec records every encode call and always succeeds, returning a
// frame whose ExpectedAction the test peer immediately echoes back.
type fakeCodec struct {
	circuitCalls int
	pumpCalls    int
}

func (f *fakeCodec) EncodeSetCircuitState(circuitID int, on bool) (*EncodedMessage, error) {
	f.circuitCalls++
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetCircuitGroupState(groupID int, on bool) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetLightTheme(groupID int, theme string) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetBodyHeatMode(bodyID int, mode string) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetHeatSetpoint(bodyID int, tempF float64) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetCoolSetpoint(bodyID int, tempF float64) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetPumpSpeed(pumpID int, target PumpTarget) (*EncodedMessage, error) {
	f.pumpCalls++
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetChlorinator(id int, sp ChlorinatorSetpoints) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetChemSetpoint(id int, chem ChemKind, value float64) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeSetClock(payload ClockPayload) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeRequestConfiguration(scope string) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) EncodeRequestStatus(scope string) (*EncodedMessage, error) {
	return &EncodedMessage{Frame: []byte{0xAA}, ExpectedPeer: 0x10, ExpectedAction: 0x01}, nil
}
func (f *fakeCodec) DecodeStatus(frame *transaction.Frame) changeengine.Mutation {
	return DecodeCircuitStatusPairs(frame)
}

// unsupportedCoolSetpointCodec embeds fakeCodec but has no wire
// representation for setCoolSetpoint, the way a real variant codec
// (e.g. SunTouch) lacks one for an intent its hardware can't do at all.
type unsupportedCoolSetpointCodec struct {
	fakeCodec
}

func (f *unsupportedCoolSetpointCodec) EncodeSetCoolSetpoint(bodyID int, tempF float64) (*EncodedMessage, error) {
	return nil, ErrUnsupportedIntent(IntentSetCoolSetpoint)
}

func echoDecoder() transaction.Decoder {
	return func(b byte) (*transaction.Frame, error) {
		return &transaction.Frame{Src: 0x10, Action: 0x01}, nil
	}
}

func newTestBoard(t *testing.T) (*Board, *fakeCodec) {
	t.Helper()
	loopA, loopB := port.NewLoopbackPair()
	pa := port.New(port.Config{ID: 0, Name: "a"}, port.LoopbackOpener(loopA))
	pb := port.New(port.Config{ID: 1, Name: "b"}, port.LoopbackOpener(loopB))
	t.Cleanup(func() { pa.Close(); pb.Close() })

	engine := transaction.NewEngine(pa, echoDecoder(), transaction.DefaultPacerConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go engine.Run(ctx)
	t.Cleanup(engine.Stop)

	// The peer side echoes every outbound byte straight back, standing in
	// for a responding controller.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := pb.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				_ = pb.Write(buf[:n])
			}
		}
	}()

	change, err := changeengine.New(changeengine.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { change.Shutdown() })

	change.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		cfg.Circuits.Upsert(model.CircuitConfig{ID: 6, Name: "pool light"})
		st.Circuits.Upsert(model.CircuitState{ID: 6, IsOn: false})

		cfg.Bodies.Upsert(model.BodyConfig{ID: 1, Name: "Pool", Type: model.BodyPool, HeatSources: model.HeatSourceHeater | model.HeatSourceSolar})
		cfg.Bodies.Upsert(model.BodyConfig{ID: 2, Name: "Spa", Type: model.BodySpa, HeatSources: model.HeatSourceHeater})
		cfg.Heaters.Upsert(model.HeaterConfig{ID: 1, Name: "Gas Heater", Type: model.HeaterTypeGas, BodyBitmask: 0b11})

		cfg.Chlorinators.Upsert(model.ChlorinatorConfig{ID: 1})
		st.Chlorinators.Upsert(model.ChlorinatorState{ID: 1})

		cfg.Pumps.Upsert(model.PumpConfig{ID: 1, Name: "Pool Pump", BodyID: 1})
		st.Pumps.Upsert(model.PumpState{ID: 1})

		return nil, changeengine.RootConfig | changeengine.RootState
	})

	codec := &fakeCodec{}
	b := &Board{
		Type:   IntelliTouch,
		Codec:  codec,
		Engine: engine,
		Change: change,
		Delay:  delay.NewManager(),
	}
	return b, codec
}

func TestBoard_SetCircuitState_InvalidAction(t *testing.T) {
	b, _ := newTestBoard(t)
	err := b.SetCircuitState(6, CircuitAction("bogus"))
	require.Error(t, err)
}

func TestBoard_SetCircuitState_UnknownCircuit(t *testing.T) {
	b, _ := newTestBoard(t)
	err := b.SetCircuitState(999, ActionOn)
	require.Error(t, err)
}

func TestBoard_SetCircuitState_CoalescesNoOp(t *testing.T) {
	b, codec := newTestBoard(t)
	err := b.SetCircuitState(6, ActionOff)
	require.NoError(t, err)
	assert.Equal(t, 0, codec.circuitCalls, "no frame should be sent for a state the circuit is already in")
}

func TestBoard_SetCircuitState_SendsAndCommits(t *testing.T) {
	b, codec := newTestBoard(t)
	err := b.SetCircuitState(6, ActionOn)
	require.NoError(t, err)
	assert.Equal(t, 1, codec.circuitCalls)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		st := b.Change.SnapshotState()
		s, _ := st.Circuits.Get(6)
		if s.IsOn {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("circuit state was never committed as on")
}

func TestBoard_SetLightTheme_RequiresCapability(t *testing.T) {
	b, _ := newTestBoard(t)
	b.Type = IntelliCom // capability matrix marks light-themes "none"
	err := b.SetLightTheme(6, "party")
	require.Error(t, err)
}

func TestBoard_SetChemSetpoint_OutOfRange(t *testing.T) {
	b, _ := newTestBoard(t)
	err := b.SetChemSetpoint(1, ChemPH, 20.0)
	require.Error(t, err)
}

func TestBoard_SetBodyHeatMode_UnknownBody(t *testing.T) {
	b, _ := newTestBoard(t)
	err := b.SetBodyHeatMode(999, model.HeatModeHeater)
	require.Error(t, err)
}

func TestBoard_SetBodyHeatMode_RejectsModeNotInHeatSources(t *testing.T) {
	b, _ := newTestBoard(t)
	// Spa's HeatSources bitmask carries only HeatSourceHeater.
	err := b.SetBodyHeatMode(2, model.HeatModeSolar)
	require.Error(t, err)
}

func TestBoard_SetBodyHeatMode_SendsAndCommitsWhenPermitted(t *testing.T) {
	b, _ := newTestBoard(t)
	err := b.SetBodyHeatMode(1, model.HeatModeHeater)
	require.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		st := b.Change.SnapshotState()
		s, _ := st.Bodies.Get(1)
		if s.HeatMode == model.HeatModeHeater {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("body heat mode was never committed")
}

func TestBoard_SetBodyHeatMode_InterlockViolation(t *testing.T) {
	b, _ := newTestBoard(t)

	// Spa is heating on the shared gas heater; pool now asking for heater
	// mode must be refused with no wire traffic.
	require.NoError(t, b.SetBodyHeatMode(2, model.HeatModeHeater))

	err := b.SetBodyHeatMode(1, model.HeatModeHeater)
	require.Error(t, err)
	var interlockErr *bridgeerr.InterlockViolationError
	require.ErrorAs(t, err, &interlockErr)
	assert.Equal(t, "spa-heat", interlockErr.ConflictingKey)
}

func TestBoard_SetCoolSetpoint_UnsupportedIntentWrapsToInvalidOperation(t *testing.T) {
	b, _ := newTestBoard(t)
	b.Codec = &unsupportedCoolSetpointCodec{}

	err := b.SetCoolSetpoint(1, 85.0)
	require.Error(t, err)
	var opErr *bridgeerr.InvalidOperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, string(IntentSetCoolSetpoint), opErr.Intent)
	assert.Equal(t, string(b.Type), opErr.ControllerType)
}

func TestBoard_SetPumpSpeed_StartsWhenNoCooldownActive(t *testing.T) {
	b, codec := newTestBoard(t)
	rpm := 2000
	err := b.SetPumpSpeed(1, PumpTarget{RPM: &rpm})
	require.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		st := b.Change.SnapshotState()
		s, _ := st.Pumps.Get(1)
		if s.RPM == rpm {
			assert.Equal(t, 1, codec.pumpCalls)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("pump speed was never committed")
}

func TestBoard_SetPumpSpeed_DefersStopDuringHeaterCooldown(t *testing.T) {
	b, _ := newTestBoard(t)

	// Pool (body 1) heats, then stops heating: the stop arms this body's
	// heater-cooldown run-on window.
	require.NoError(t, b.SetBodyHeatMode(1, model.HeatModeHeater))
	deadline := time.Now().Add(time.Second)
	for {
		st := b.Change.SnapshotState()
		s, _ := st.Bodies.Get(1)
		if s.HeatMode == model.HeatModeHeater {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("heat mode never committed on")
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, b.SetBodyHeatMode(1, model.HeatModeOff))
	require.True(t, b.Delay.Active("body", 1, delay.PurposeHeaterCooldown))

	// The pump is already circulating; stage it as running directly so the
	// pending stop below is attributable only to the heater-cooldown gate,
	// not the pump's own change-cooldown.
	b.Change.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		s, _ := st.Pumps.Get(1)
		s.RPM = 1500
		st.Pumps.Upsert(s)
		return nil, changeengine.RootState
	})

	rpm := 0
	err := b.SetPumpSpeed(1, PumpTarget{RPM: &rpm})
	require.NoError(t, err, "a deferred stop is not an error")

	st := b.Change.SnapshotState()
	s, _ := st.Pumps.Get(1)
	assert.Equal(t, 1500, s.RPM, "pump must keep running until the heater-cooldown run-on clears")
}

func TestBoard_SetChlorinator_CommitsConfigSetpoints(t *testing.T) {
	b, _ := newTestBoard(t)
	err := b.SetChlorinator(1, ChlorinatorSetpoints{PoolSetpoint: 55, SpaSetpoint: 20, SuperChlor: true, SuperChlorHours: 4})
	require.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		cfg := b.Change.SnapshotConfig()
		c, _ := cfg.Chlorinators.Get(1)
		if c.PoolSetpoint == 55 {
			assert.Equal(t, 20, c.SpaSetpoint)
			assert.Equal(t, 4, c.SuperChlorHours)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("chlorinator config setpoints were never committed")
}
