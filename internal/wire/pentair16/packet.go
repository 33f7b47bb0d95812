package pentair16

import "time"

// Packet is a decoded Pentair-16 frame: preamble-flag, dest, src, action,
// and payload, with its verified checksum and decode timestamp.
type Packet struct {
	PreambleFlag byte
	Dest         byte
	Src          byte
	Action       byte
	Payload      []byte
	Checksum     uint16
	Timestamp    time.Time
}

// NewPacket builds a Packet ready for encoding; the checksum is computed
// by Encode, not carried by the caller.
func NewPacket(preambleFlag, dest, src, action byte, payload []byte) *Packet {
	return &Packet{
		PreambleFlag: preambleFlag,
		Dest:         dest,
		Src:          src,
		Action:       action,
		Payload:      payload,
	}
}
