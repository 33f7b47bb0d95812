// Package easytouch implements board.Codec for the EasyTouch controller
// family. It shares IntelliTouch's Pentair-16 framing and action codes but
// only partially supports light themes (spec §4.5's capability matrix
// marks EasyTouch "partial" for light-themes), so EncodeSetLightTheme
// rejects themes outside EasyTouch's reduced palette.
package easytouch

import (
	"encoding/binary"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/pentacore/bridge/internal/wire/pentair16"
)

const (
	actionCircuitSet     byte = 0x86
	actionCircuitSetAck  byte = 0x01
	actionHeatSet        byte = 0x88
	actionPumpSpeedSet   byte = 0xE4
	actionChlorinatorSet byte = 0x91
	actionChemSet        byte = 0x93
	actionClockSet       byte = 0x85
	actionConfigRequest  byte = 0x92
	actionConfigReply    byte = 0x90
	actionStatusRequest  byte = 0x86
	actionStatusReply    byte = 0x02
)

const (
	addrController byte = 0x00
	addrBridge     byte = 0x22
)

// reducedLightThemes is EasyTouch's smaller palette, a subset of
// IntelliTouch's full theme table.
var reducedLightThemes = map[string]byte{
	"off":       0x00,
	"sync":      0x01,
	"color-set": 0x02,
	"party":     0x04,
	"romance":   0x05,
}

var heatModeCodes = map[string]byte{
	"off":             0x00,
	"heater":          0x01,
	"solar":           0x02,
	"solar-preferred": 0x03,
}

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
	code, ok := reducedLightThemes[theme]
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
	code, ok := heatModeCodes[mode]
	if !ok {
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
	payload := make([]byte, 4)
	payload[0] = byte(pumpID)
	switch {
	case target.RPM != nil:
		binary.BigEndian.PutUint16(payload[1:3], uint16(*target.RPM))
	case target.Flow != nil:
		payload[3] = 1
		binary.BigEndian.PutUint16(payload[1:3], uint16(*target.Flow))
	default:
		return nil, board.ErrUnsupportedIntent(board.IntentSetPumpSpeed)
	}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionPumpSpeedSet, payload))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionPumpSpeedSet}, nil
}

func (c *Codec) EncodeSetChlorinator(id int, sp board.ChlorinatorSetpoints) (*board.EncodedMessage, error) {
	var superFlag byte
	if sp.SuperChlor {
		superFlag = 1
	}
	payload := []byte{byte(id), byte(sp.PoolSetpoint), byte(sp.SpaSetpoint), superFlag, byte(sp.SuperChlorHours)}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionChlorinatorSet, payload))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionChlorinatorSet}, nil
}

func (c *Codec) EncodeSetChemSetpoint(id int, chem board.ChemKind, value float64) (*board.EncodedMessage, error) {
	var chemCode byte
	switch chem {
	case board.ChemPH:
		chemCode = 0x00
	case board.ChemORP:
		chemCode = 0x01
	default:
		return nil, board.ErrUnsupportedIntent(board.IntentSetChemSetpoint)
	}
	scaled := uint16(value * 100)
	payload := []byte{byte(id), chemCode, byte(scaled >> 8), byte(scaled & 0xFF)}
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionChemSet, payload))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionChemSet}, nil
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
	frame, err := pentair16.Encode(pentair16.NewPacket(0x00, addrController, addrBridge, actionConfigRequest, nil))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionConfigReply}, nil
}

func (c *Codec) EncodeRequestStatus(scope string) (*board.EncodedMessage, error) {
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
