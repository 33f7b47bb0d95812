package board

import (
	"fmt"
	"time"

	"github.com/pentacore/bridge/internal/bridgeerr"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/delay"
	"github.com/pentacore/bridge/internal/model"
	"github.com/pentacore/bridge/internal/transaction"
)

// Board is the variant-parameterized facade of spec §4.5: it validates an
// intent's input and capability, asks the Delay Manager whether the
// operation may proceed, encodes it via the bound Codec, and submits it to
// the port's Transaction Engine. Intent handlers validate range and enum
// membership before queuing a frame; post-queue failures are wire-level
// (NoResponse/ProtocolError/PortClosed), never validation errors.
type Board struct {
	Type   ControllerType
	Codec  Codec
	Engine *transaction.Engine
	Change *changeengine.Engine
	Delay  *delay.Manager

	HeatRange HeatRangeLookup
}

// HeatRangeLookup supplies the variant-specific permitted heat/cool
// setpoint range for a body.
type HeatRangeLookup func(bodyID int) (model.HeatSetpointRange, error)

func (b *Board) requireCapability(c Capability, intent IntentKind) error {
	if !Supports(b.Type, c) {
		return &bridgeerr.InvalidOperationError{ControllerType: string(b.Type), Intent: string(intent)}
	}
	return nil
}

// wrapCodecErr converts a Codec's ErrUnsupportedIntent sentinel into
// bridgeerr.InvalidOperationError so every intent fails with a member of
// the closed error taxonomy (spec §7), not just the one intent
// (SetLightTheme) that happens to pre-check requireCapability. Any other
// error passes through unchanged.
func (b *Board) wrapCodecErr(err error) error {
	if intent, ok := unsupportedIntentFrom(err); ok {
		return &bridgeerr.InvalidOperationError{ControllerType: string(b.Type), Intent: string(intent)}
	}
	return err
}

// submit enqueues an encoded message at the given priority and blocks
// until the transaction resolves, translating a matcher failure to the
// caller's error. A nil Frame (Standalone's direct GPIO writes have no
// wire message to send) completes immediately with no transaction at all.
func (b *Board) submit(msg *EncodedMessage, priority transaction.Priority) error {
	if msg.Frame == nil {
		return nil
	}
	result := make(chan *transaction.MatchResult, 1)
	b.Engine.Enqueue(&transaction.Outbound{
		Priority:       priority,
		Frame:          msg.Frame,
		ExpectedPeer:   msg.ExpectedPeer,
		ExpectedAction: msg.ExpectedAction,
		CorrelatingID:  msg.CorrelatingID,
		OnResult:       func(r *transaction.MatchResult) { result <- r },
	})
	r := <-result
	return r.Err
}

// SetCircuitState implements the setCircuitState intent. Repeating an
// identical state is coalesced: no second frame is produced (spec §8
// round-trip law), but the call still succeeds.
func (b *Board) SetCircuitState(circuitID int, action CircuitAction) error {
	cfg := b.Change.SnapshotConfig()
	if _, ok := cfg.Circuits.Get(circuitID); !ok {
		return &bridgeerr.EquipmentNotFoundError{Kind: "circuit", ID: circuitID}
	}

	st := b.Change.SnapshotState()
	cur, _ := st.Circuits.Get(circuitID)

	var want bool
	switch action {
	case ActionOn:
		want = true
	case ActionOff:
		want = false
	case ActionToggle:
		want = !cur.IsOn
	default:
		return &bridgeerr.InvalidEquipmentDataError{Kind: "circuit", ID: circuitID, Field: "action", Reason: "must be on, off, or toggle"}
	}

	if cur.IsOn == want {
		return nil
	}

	msg, err := b.Codec.EncodeSetCircuitState(circuitID, want)
	if err != nil {
		return b.wrapCodecErr(err)
	}

	var submitErr error
	if guardErr := b.Delay.Guard("circuit", circuitID, delay.PurposeChangeCooldown, false, func() {
		if submitErr = b.submit(msg, transaction.PriorityUser); submitErr != nil {
			return
		}
		b.Change.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
			s, _ := st.Circuits.Get(circuitID)
			s.IsOn = want
			st.Circuits.Upsert(s)
			return []changeengine.Event{{Kind: changeengine.KindCircuit, ID: circuitID, PostImage: s}}, changeengine.RootState
		})
	}); guardErr != nil {
		return guardErr
	}
	return submitErr
}

func (b *Board) SetCircuitGroupState(groupID int, on bool) error {
	cfg := b.Change.SnapshotConfig()
	if _, ok := cfg.CircuitGroups.Get(groupID); !ok {
		return &bridgeerr.EquipmentNotFoundError{Kind: "circuitGroup", ID: groupID}
	}
	msg, err := b.Codec.EncodeSetCircuitGroupState(groupID, on)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submitAndCommit(msg, transaction.PriorityUser, func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		s, _ := st.CircuitGroups.Get(groupID)
		s.IsOn = on
		st.CircuitGroups.Upsert(s)
		return []changeengine.Event{{Kind: changeengine.KindCircuitGroup, ID: groupID, PostImage: s}}, changeengine.RootState
	})
}

func (b *Board) SetLightTheme(groupID int, theme string) error {
	if err := b.requireCapability(CapLightThemes, IntentSetLightTheme); err != nil {
		return err
	}
	msg, err := b.Codec.EncodeSetLightTheme(groupID, theme)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submitAndCommit(msg, transaction.PriorityUser, func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		s, _ := st.LightGroups.Get(groupID)
		s.LightingTheme = theme
		st.LightGroups.Upsert(s)
		return []changeengine.Event{{Kind: changeengine.KindLightGroup, ID: groupID, PostImage: s}}, changeengine.RootState
	})
}

// SetBodyHeatMode implements the setBodyHeatMode intent. It rejects a mode
// the body's heatSources bitmask does not permit (spec §3) and, for a mode
// that draws heat, checks the interlock guarding any other body sharing the
// same heater equipment before encoding a frame (spec §8 scenario 4).
func (b *Board) SetBodyHeatMode(bodyID int, mode model.HeatMode) error {
	if !model.ValidHeatMode(mode) {
		return &bridgeerr.InvalidEquipmentDataError{Kind: "body", ID: bodyID, Field: "heatMode", Reason: "unrecognized heat mode"}
	}

	cfg := b.Change.SnapshotConfig()
	body, ok := cfg.Bodies.Get(bodyID)
	if !ok {
		return &bridgeerr.EquipmentNotFoundError{Kind: "body", ID: bodyID}
	}
	if !model.HeatModePermitted(body.HeatSources, mode) {
		return &bridgeerr.InvalidEquipmentDataError{Kind: "body", ID: bodyID, Field: "heatMode", Reason: fmt.Sprintf("mode %q not permitted by this body's heat sources", mode)}
	}

	wantsHeat := mode == model.HeatModeHeater || mode == model.HeatModeSolarPref
	if wantsHeat {
		if key, shared := sharedHeaterInterlockKey(cfg, body); shared {
			if err := b.Delay.CheckInterlock(key); err != nil {
				return err
			}
		}
	}

	cur, _ := b.Change.SnapshotState().Bodies.Get(bodyID)
	wasHeating := cur.HeatMode == model.HeatModeHeater || cur.HeatMode == model.HeatModeSolarPref

	msg, err := b.Codec.EncodeSetBodyHeatMode(bodyID, string(mode))
	if err != nil {
		return b.wrapCodecErr(err)
	}

	apply := func() error {
		if err := b.submitAndCommit(msg, transaction.PriorityUser, func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
			s, _ := st.Bodies.Get(bodyID)
			s.HeatMode = mode
			st.Bodies.Upsert(s)
			return []changeengine.Event{{Kind: changeengine.KindBody, ID: bodyID, PostImage: s}}, changeengine.RootState
		}); err != nil {
			return err
		}
		if wantsHeat && !wasHeating {
			b.Delay.Start("load", 0, delay.PurposeStartupStagger, delay.StartupStaggerWindow)
		}
		return nil
	}

	var submitErr error
	if wantsHeat && !wasHeating {
		// A heater lighting up is a high-current load start: observe the
		// startup-stagger window shared with every other load (spec §4.7)
		// before transmitting.
		if guardErr := b.Delay.Guard("load", 0, delay.PurposeStartupStagger, false, func() { submitErr = apply() }); guardErr != nil {
			return guardErr
		}
	} else {
		submitErr = apply()
	}
	if submitErr != nil {
		return submitErr
	}

	ownKey := fmt.Sprintf("%s-heat", body.Type)
	if wantsHeat {
		b.Delay.SetInterlock(ownKey)
	} else {
		b.Delay.ClearInterlock(ownKey)
		if wasHeating {
			// Heater just turned off: arm this body's run-on cooldown so
			// SetPumpSpeed defers the circulation pump's stop command until
			// it clears (spec §4.7's heater-cooldown purpose).
			b.Delay.Start("body", bodyID, delay.PurposeHeaterCooldown, delay.HeaterChangeCooldown)
		}
	}
	return nil
}

// sharedHeaterInterlockKey reports the interlock key guarding body's heat
// request, derived from whichever other body shares a heater's
// BodyBitmask with it (e.g. a single gas heater plumbed to both pool and
// spa). The key names the other body's type, matching the key
// SetBodyHeatMode sets on that body's own heater transitions.
func sharedHeaterInterlockKey(cfg *model.ConfigGraph, body model.BodyConfig) (string, bool) {
	bit := bodyBit(body.ID)
	for _, h := range cfg.Heaters.All() {
		if h.BodyBitmask&bit == 0 {
			continue
		}
		for _, other := range cfg.Bodies.All() {
			if other.ID == body.ID {
				continue
			}
			if h.BodyBitmask&bodyBit(other.ID) != 0 {
				return fmt.Sprintf("%s-heat", other.Type), true
			}
		}
	}
	return "", false
}

func bodyBit(bodyID int) uint32 {
	if bodyID <= 0 || bodyID > 32 {
		return 0
	}
	return 1 << uint(bodyID-1)
}

func (b *Board) SetHeatSetpoint(bodyID int, tempF float64) error {
	if b.HeatRange != nil {
		r, err := b.HeatRange(bodyID)
		if err != nil {
			return err
		}
		if err := r.Validate(tempF); err != nil {
			return &bridgeerr.InvalidEquipmentDataError{Kind: "body", ID: bodyID, Field: "heatSetpoint", Reason: err.Error()}
		}
	}
	msg, err := b.Codec.EncodeSetHeatSetpoint(bodyID, tempF)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submitAndCommit(msg, transaction.PriorityUser, func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		s, _ := st.Bodies.Get(bodyID)
		s.SetPoint = tempF
		st.Bodies.Upsert(s)
		return []changeengine.Event{{Kind: changeengine.KindBody, ID: bodyID, PostImage: s}}, changeengine.RootState
	})
}

func (b *Board) SetCoolSetpoint(bodyID int, tempF float64) error {
	if b.HeatRange != nil {
		r, err := b.HeatRange(bodyID)
		if err != nil {
			return err
		}
		if err := r.Validate(tempF); err != nil {
			return &bridgeerr.InvalidEquipmentDataError{Kind: "body", ID: bodyID, Field: "coolSetpoint", Reason: err.Error()}
		}
	}
	msg, err := b.Codec.EncodeSetCoolSetpoint(bodyID, tempF)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submit(msg, transaction.PriorityUser)
}

// pumpTargetIsOff reports whether target commands the pump to stop,
// inspecting whichever of rpm/flow/speed the variant set.
func pumpTargetIsOff(target PumpTarget) bool {
	switch {
	case target.RPM != nil:
		return *target.RPM == 0
	case target.Flow != nil:
		return *target.Flow == 0
	case target.Speed != nil:
		return *target.Speed == 0
	default:
		return false
	}
}

// SetPumpSpeed implements the setPumpSpeed intent. A transition that starts
// the pump from a stop observes the startup-stagger window shared across
// every high-current load (spec §4.7, "prevents multiple high-current
// loads from starting within 2 s of each other"). A transition that stops
// a pump tied to a body (PumpConfig.BodyID) is deferred, not refused, until
// that body's heater-cooldown run-on has cleared, per SetBodyHeatMode.
func (b *Board) SetPumpSpeed(pumpID int, target PumpTarget) error {
	msg, err := b.Codec.EncodeSetPumpSpeed(pumpID, target)
	if err != nil {
		return b.wrapCodecErr(err)
	}

	cfg := b.Change.SnapshotConfig()
	pump, _ := cfg.Pumps.Get(pumpID)
	cur, _ := b.Change.SnapshotState().Pumps.Get(pumpID)
	wasRunning := cur.RPM > 0 || cur.Flow > 0
	turningOff := pumpTargetIsOff(target)
	turningOn := !wasRunning && !turningOff

	var submitErr error
	apply := func() {
		submitErr = b.submitAndCommit(msg, transaction.PriorityUser, func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
			s, _ := st.Pumps.Get(pumpID)
			if target.RPM != nil {
				s.RPM = *target.RPM
			}
			if target.Flow != nil {
				s.Flow = *target.Flow
			}
			st.Pumps.Upsert(s)
			return []changeengine.Event{{Kind: changeengine.KindPump, ID: pumpID, PostImage: s}}, changeengine.RootState
		})
		if submitErr == nil {
			b.Delay.Start("pump", pumpID, delay.PurposeChangeCooldown, delay.PumpChangeCooldown)
			if turningOn {
				b.Delay.Start("load", 0, delay.PurposeStartupStagger, delay.StartupStaggerWindow)
			}
		}
	}

	gated := apply
	switch {
	case turningOff && pump.BodyID > 0:
		gated = func() {
			if err := b.Delay.Guard("body", pump.BodyID, delay.PurposeHeaterCooldown, false, apply); err != nil {
				submitErr = err
			}
		}
	case turningOn:
		gated = func() {
			if err := b.Delay.Guard("load", 0, delay.PurposeStartupStagger, false, apply); err != nil {
				submitErr = err
			}
		}
	}

	if guardErr := b.Delay.Guard("pump", pumpID, delay.PurposeChangeCooldown, false, gated); guardErr != nil {
		return guardErr
	}
	return submitErr
}

// SetChlorinator implements the setChlorinator intent. PoolSetpoint,
// SpaSetpoint, and SuperChlorHours are configuration attributes (spec §3's
// data-model table) and are committed to cfg.Chlorinators in the same
// transaction as the state-side SuperChlor flag, so a read immediately
// after a successful intent reflects the caller's setpoints.
func (b *Board) SetChlorinator(id int, sp ChlorinatorSetpoints) error {
	msg, err := b.Codec.EncodeSetChlorinator(id, sp)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submitAndCommit(msg, transaction.PriorityUser, func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		c, _ := cfg.Chlorinators.Get(id)
		c.PoolSetpoint = sp.PoolSetpoint
		c.SpaSetpoint = sp.SpaSetpoint
		c.SuperChlorHours = sp.SuperChlorHours
		cfg.Chlorinators.Upsert(c)

		s, _ := st.Chlorinators.Get(id)
		s.SuperChlor = sp.SuperChlor
		st.Chlorinators.Upsert(s)
		return []changeengine.Event{{Kind: changeengine.KindChlorinator, ID: id, PostImage: s}}, changeengine.RootConfig | changeengine.RootState
	})
}

func (b *Board) SetChemSetpoint(id int, chem ChemKind, value float64) error {
	r := model.DefaultChemSetpointRange()
	var rangeErr error
	switch chem {
	case ChemPH:
		rangeErr = r.ValidatePH(value)
	case ChemORP:
		rangeErr = r.ValidateORP(value)
	default:
		rangeErr = &bridgeerr.InvalidEquipmentDataError{Kind: "chemController", ID: id, Field: "chem", Reason: "unrecognized chemistry kind"}
	}
	if rangeErr != nil {
		return &bridgeerr.InvalidEquipmentDataError{Kind: "chemController", ID: id, Field: string(chem), Reason: rangeErr.Error()}
	}
	msg, err := b.Codec.EncodeSetChemSetpoint(id, chem, value)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submit(msg, transaction.PriorityUser)
}

func (b *Board) SetClock(at time.Time) error {
	msg, err := b.Codec.EncodeSetClock(ClockPayload{At: at})
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submit(msg, transaction.PrioritySystem)
}

func (b *Board) RequestConfiguration(scope string) error {
	msg, err := b.Codec.EncodeRequestConfiguration(scope)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submit(msg, transaction.PrioritySystem)
}

func (b *Board) RequestStatus(scope string) error {
	msg, err := b.Codec.EncodeRequestStatus(scope)
	if err != nil {
		return b.wrapCodecErr(err)
	}
	return b.submit(msg, transaction.PriorityBackground)
}

// OnSpontaneous adapts the Board's Codec into a transaction.Spontaneous:
// every inbound frame the matcher could not correlate to an in-flight
// transaction is handed to the Codec's decoders, and any resulting patch
// is committed to the live model (spec §4.4's "unmatched frames are routed
// to the Board Dispatch as spontaneous status").
func (b *Board) OnSpontaneous() transaction.Spontaneous {
	return func(f *transaction.Frame) {
		if m := b.Codec.DecodeStatus(f); m != nil {
			b.Change.Commit(m)
		}
	}
}

// submitAndCommit submits msg and, on success, applies the given mutation
// to the live model.
func (b *Board) submitAndCommit(msg *EncodedMessage, priority transaction.Priority, mutate changeengine.Mutation) error {
	if err := b.submit(msg, priority); err != nil {
		return err
	}
	b.Change.Commit(mutate)
	return nil
}
