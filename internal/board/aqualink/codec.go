// Package aqualink implements board.Codec for the AquaLink controller
// family. AquaLink has no dedicated wire package of its own: spec §4.5
// marks its dual-body support "varies" by model rather than fixed by
// protocol, so this codec reuses the Pentair-16 framing (the same
// preamble/checksum rules apply to the RS-485 segment AquaLink boards
// share with the Pentair family) and gates dual-body intents behind a
// constructor flag instead of the static capability matrix alone.
package aqualink

import (
	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/pentacore/bridge/internal/wire/pentair16"
)

const (
	actionCircuitSet    byte = 0x86
	actionCircuitSetAck byte = 0x01
	actionHeatSet       byte = 0x88
	actionClockSet      byte = 0x85
	actionStatusRequest byte = 0x86
	actionStatusReply   byte = 0x02
)

const (
	addrController byte = 0x00
	addrBridge     byte = 0x22
)

var lightThemes = map[string]byte{
	"off":   0x00,
	"sync":  0x01,
	"party": 0x04,
}

// Codec is parameterized by whether the connected AquaLink model actually
// has a second body, since the capability matrix only records "varies".
type Codec struct {
	DualBody bool
}

func New(dualBody bool) *Codec { return &Codec{DualBody: dualBody} }

func (c *Codec) EncodeSetCircuitState(circuitID int, on bool) (*board.EncodedMessage, error) {
	var state byte
	if on {
		state = 1
	}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionCircuitSet, []byte{byte(circuitID), state}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
}

func (c *Codec) EncodeSetCircuitGroupState(groupID int, on bool) (*board.EncodedMessage, error) {
	return c.EncodeSetCircuitState(groupID, on)
}

func (c *Codec) EncodeSetLightTheme(groupID int, theme string) (*board.EncodedMessage, error) {
	code, ok := lightThemes[theme]
	if !ok {
		return nil, board.ErrUnsupportedIntent(board.IntentSetLightTheme)
	}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionCircuitSet, []byte{byte(groupID), code}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
}

func (c *Codec) EncodeSetBodyHeatMode(bodyID int, mode string) (*board.EncodedMessage, error) {
	if bodyID == 1 && !c.DualBody {
		return nil, board.ErrUnsupportedIntent(board.IntentSetBodyHeatMode)
	}
	var code byte
	switch mode {
	case "off":
		code = 0x00
	case "heater":
		code = 0x01
	case "solar":
		code = 0x02
	default:
		return nil, board.ErrUnsupportedIntent(board.IntentSetBodyHeatMode)
	}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionHeatSet, []byte{byte(bodyID), code}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
}

func (c *Codec) EncodeSetHeatSetpoint(bodyID int, tempF float64) (*board.EncodedMessage, error) {
	if bodyID == 1 && !c.DualBody {
		return nil, board.ErrUnsupportedIntent(board.IntentSetHeatSetpoint)
	}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionHeatSet, []byte{byte(bodyID), byte(int(tempF))}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
}

func (c *Codec) EncodeSetCoolSetpoint(bodyID int, tempF float64) (*board.EncodedMessage, error) {
	return nil, board.ErrUnsupportedIntent(board.IntentSetCoolSetpoint)
}

func (c *Codec) EncodeSetPumpSpeed(pumpID int, target board.PumpTarget) (*board.EncodedMessage, error) {
	return nil, board.ErrUnsupportedIntent(board.IntentSetPumpSpeed)
}

func (c *Codec) EncodeSetChlorinator(id int, sp board.ChlorinatorSetpoints) (*board.EncodedMessage, error) {
	return nil, board.ErrUnsupportedIntent(board.IntentSetChlorinator)
}

func (c *Codec) EncodeSetChemSetpoint(id int, chem board.ChemKind, value float64) (*board.EncodedMessage, error) {
	return nil, board.ErrUnsupportedIntent(board.IntentSetChemSetpoint)
}

func (c *Codec) EncodeSetClock(payload board.ClockPayload) (*board.EncodedMessage, error) {
	t := payload.At
	body := []byte{byte(t.Hour()), byte(t.Minute()), byte(t.Month()), byte(t.Day()), byte(t.Year() - 2000), byte(t.Weekday())}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionClockSet, body))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionClockSet}, nil
}

func (c *Codec) EncodeRequestConfiguration(scope string) (*board.EncodedMessage, error) {
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionStatusRequest, nil))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionStatusReply}, nil
}

func (c *Codec) DecodeStatus(f *transaction.Frame) changeengine.Mutation {
	if f.Action != actionStatusReply {
		return nil
	}
	return board.DecodeCircuitStatusPairs(f)
}

func (c *Codec) EncodeRequestStatus(scope string) (*board.EncodedMessage, error) {
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionStatusRequest, nil))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionStatusReply}, nil
}
