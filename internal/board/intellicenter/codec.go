// Package intellicenter implements board.Codec for the IntelliCenter
// controller family, the only variant framed with Pentair-2 (spec §4.5
// marks IntelliCenter "full"/"extensive" across every capability this
// bridge models).
package intellicenter

import (
	"encoding/binary"
	"strconv"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/pentacore/bridge/internal/wire/pentair2"
)

const (
	actionCircuitSet     byte = 0x06
	actionCircuitSetAck  byte = 0x01
	actionHeatSet        byte = 0x08
	actionPumpSpeedSet   byte = 0x24
	actionChlorinatorSet byte = 0x11
	actionChemSet        byte = 0x13
	actionClockSet       byte = 0x05
	actionConfigRequest  byte = 0x12
	actionConfigReply    byte = 0x10
	actionStatusRequest  byte = 0x06
	actionStatusReply    byte = 0x02
)

const (
	addrController byte = 0x00
	addrBridge     byte = 0x22
)

var lightThemeCodes = map[string]byte{
	"off":        0x00,
	"sync":       0x01,
	"color-set":  0x02,
	"color-swim": 0x03,
	"party":      0x04,
	"romance":    0x05,
	"caribbean":  0x06,
	"american":   0x07,
	"california": 0x08,
	"sunset":     0x09,
	"royal":      0x0A,
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
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionCircuitSet, []byte{byte(circuitID), state}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
}

func (c *Codec) EncodeSetCircuitGroupState(groupID int, on bool) (*board.EncodedMessage, error) {
	return c.EncodeSetCircuitState(groupID, on)
}

func (c *Codec) EncodeSetLightTheme(groupID int, theme string) (*board.EncodedMessage, error) {
	code, ok := lightThemeCodes[theme]
	if !ok {
		return nil, board.ErrUnsupportedIntent(board.IntentSetLightTheme)
	}
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionCircuitSet, []byte{byte(groupID), code}))
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
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionHeatSet, []byte{byte(bodyID), code}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
}

func (c *Codec) EncodeSetHeatSetpoint(bodyID int, tempF float64) (*board.EncodedMessage, error) {
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionHeatSet, []byte{byte(bodyID), byte(int(tempF)), 0x00}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
}

func (c *Codec) EncodeSetCoolSetpoint(bodyID int, tempF float64) (*board.EncodedMessage, error) {
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionHeatSet, []byte{byte(bodyID), byte(int(tempF)), 0x01}))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionCircuitSetAck}, nil
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
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionPumpSpeedSet, payload))
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
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionChlorinatorSet, payload))
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
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionChemSet, payload))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionChemSet}, nil
}

func (c *Codec) EncodeSetClock(payload board.ClockPayload) (*board.EncodedMessage, error) {
	t := payload.At
	body := []byte{byte(t.Hour()), byte(t.Minute()), byte(t.Month()), byte(t.Day()), byte(t.Year() - 2000), byte(t.Weekday())}
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionClockSet, body))
	if err != nil {
		return nil, err
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionClockSet}, nil
}

func (c *Codec) EncodeRequestConfiguration(scope string) (*board.EncodedMessage, error) {
	idx, err := scopeIndex(scope)
	if err != nil {
		return nil, err
	}
	frame, encErr := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionConfigRequest, []byte{byte(idx)}))
	if encErr != nil {
		return nil, encErr
	}
	return &board.EncodedMessage{Frame: frame, ExpectedPeer: addrController, ExpectedAction: actionConfigReply, CorrelatingID: idx}, nil
}

func (c *Codec) EncodeRequestStatus(scope string) (*board.EncodedMessage, error) {
	frame, err := pentair2.Encode(pentair2.NewPacket(addrController, addrBridge, actionStatusRequest, nil))
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

func scopeIndex(scope string) (int, error) {
	if scope == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(scope)
	if err != nil {
		return 0, board.ErrUnsupportedIntent(board.IntentRequestConfiguration)
	}
	return n, nil
}
