// Package standalone implements board.Codec for equipment with no pool
// controller at all: relays and sensors wired directly to a host's GPIO
// header. There is no RS-485 segment and no framed protocol here — every
// "encoded message" is a direct pin write, grounded on
// lologarithm-refuge's use of github.com/stianeikeland/go-rpio for
// relay/sensor control, generalized from one appliance to a pin-map
// covering every circuit/pump/heater this bridge exposes.
package standalone

import (
	"fmt"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/transaction"
	rpio "github.com/stianeikeland/go-rpio"
)

// PinMap binds entity ids to BCM GPIO pin numbers. A Standalone
// installation is wired by hand, so this map is supplied at
// configuration time rather than hardcoded.
type PinMap struct {
	Circuits map[int]int
	Pumps    map[int]int
	Heaters  map[int]int
}

// Codec drives relays directly; its "Encode*" methods perform the pin
// write themselves and return an EncodedMessage whose Frame is nil, which
// Board.submit completes at once (GPIO writes have no transaction to
// await).
type Codec struct {
	pins PinMap
}

func New(pins PinMap) (*Codec, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("standalone: opening gpio: %w", err)
	}
	return &Codec{pins: pins}, nil
}

func (c *Codec) Close() error { return rpio.Close() }

func (c *Codec) pin(id int, table map[int]int) (rpio.Pin, error) {
	bcm, ok := table[id]
	if !ok {
		return 0, fmt.Errorf("standalone: no pin mapped for id %d", id)
	}
	p := rpio.Pin(bcm)
	p.Output()
	return p, nil
}

// direct wraps a pin write as a self-completing EncodedMessage: its Frame
// is nil, so Board.submit returns without handing anything to a
// Transaction Engine or Port.
func direct() *board.EncodedMessage {
	return &board.EncodedMessage{Frame: nil}
}

func (c *Codec) EncodeSetCircuitState(circuitID int, on bool) (*board.EncodedMessage, error) {
	p, err := c.pin(circuitID, c.pins.Circuits)
	if err != nil {
		return nil, err
	}
	if on {
		p.High()
	} else {
		p.Low()
	}
	return direct(), nil
}

func (c *Codec) EncodeSetCircuitGroupState(groupID int, on bool) (*board.EncodedMessage, error) {
	return c.EncodeSetCircuitState(groupID, on)
}

func (c *Codec) EncodeSetLightTheme(groupID int, theme string) (*board.EncodedMessage, error) {
	// A standalone relay can only switch a light on or off; themes are a
	// host-driven concept layered on top (spec §4.5 marks Standalone
	// "configurable" for light-themes via its own scripting, not a wire
	// message this codec can issue).
	return nil, board.ErrUnsupportedIntent(board.IntentSetLightTheme)
}

func (c *Codec) EncodeSetBodyHeatMode(bodyID int, mode string) (*board.EncodedMessage, error) {
	p, err := c.pin(bodyID, c.pins.Heaters)
	if err != nil {
		return nil, err
	}
	if mode == "heater" {
		p.High()
	} else {
		p.Low()
	}
	return direct(), nil
}

func (c *Codec) EncodeSetHeatSetpoint(bodyID int, tempF float64) (*board.EncodedMessage, error) {
	// No thermostat on a bare relay; setpoint tracking is host-driven.
	return nil, board.ErrUnsupportedIntent(board.IntentSetHeatSetpoint)
}

func (c *Codec) EncodeSetCoolSetpoint(bodyID int, tempF float64) (*board.EncodedMessage, error) {
	return nil, board.ErrUnsupportedIntent(board.IntentSetCoolSetpoint)
}

func (c *Codec) EncodeSetPumpSpeed(pumpID int, target board.PumpTarget) (*board.EncodedMessage, error) {
	p, err := c.pin(pumpID, c.pins.Pumps)
	if err != nil {
		return nil, err
	}
	on := (target.RPM != nil && *target.RPM > 0) || (target.Flow != nil && *target.Flow > 0) || (target.Speed != nil && *target.Speed > 0)
	if on {
		p.High()
	} else {
		p.Low()
	}
	return direct(), nil
}

func (c *Codec) EncodeSetChlorinator(id int, sp board.ChlorinatorSetpoints) (*board.EncodedMessage, error) {
	return nil, board.ErrUnsupportedIntent(board.IntentSetChlorinator)
}

func (c *Codec) EncodeSetChemSetpoint(id int, chem board.ChemKind, value float64) (*board.EncodedMessage, error) {
	return nil, board.ErrUnsupportedIntent(board.IntentSetChemSetpoint)
}

func (c *Codec) EncodeSetClock(payload board.ClockPayload) (*board.EncodedMessage, error) {
	// Standalone relies on the host's own clock; there is nothing to set.
	return direct(), nil
}

func (c *Codec) EncodeRequestConfiguration(scope string) (*board.EncodedMessage, error) {
	return direct(), nil
}

func (c *Codec) EncodeRequestStatus(scope string) (*board.EncodedMessage, error) {
	return direct(), nil
}

// DecodeStatus is always nil: a Standalone installation has no RS-485
// segment and never receives an inbound frame to correlate or decode.
func (c *Codec) DecodeStatus(f *transaction.Frame) changeengine.Mutation {
	return nil
}
