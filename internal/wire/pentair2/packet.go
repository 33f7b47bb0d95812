package pentair2

import "time"

// Packet is a decoded Pentair-2 (IntelliCenter) frame.
type Packet struct {
	Dest      byte
	Src       byte
	Action    byte
	Payload   []byte
	Checksum  uint16
	Timestamp time.Time
}

// NewPacket builds a Packet ready for encoding.
func NewPacket(dest, src, action byte, payload []byte) *Packet {
	return &Packet{Dest: dest, Src: src, Action: action, Payload: payload}
}
