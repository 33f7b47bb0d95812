// Package intellicom implements board.Codec for the IntelliCom controller
// family: the narrowest Pentair-16 variant, with no light themes, no
// chemistry binding, and only limited native scheduling (spec §4.5).
package intellicom

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

type Codec struct{}

func New() *Codec { return &Codec{} }

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
	return nil, board.ErrUnsupportedIntent(board.IntentSetLightTheme)
}

func (c *Codec) EncodeSetBodyHeatMode(bodyID int, mode string) (*board.EncodedMessage, error) {
	var code byte
	switch mode {
	case "off":
		code = 0x00
	case "heater":
		code = 0x01
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
