package pentair2

import (
	"fmt"

	"github.com/pentacore/bridge/internal/wire"
)

// Encode produces the contiguous wire bytes for a Packet.
func Encode(p *Packet) ([]byte, error) {
	if len(p.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("pentair2: payload too large: %d bytes (max %d)", len(p.Payload), MaxPayloadSize)
	}

	body := make([]byte, 0, 6+len(p.Payload))
	body = append(body, HeaderByte0, HeaderByte1, p.Dest, p.Src, p.Action, byte(len(p.Payload)))
	body = append(body, p.Payload...)

	checksum := wire.Checksum(body)
	p.Checksum = checksum

	out := make([]byte, 0, len(body)+2)
	out = append(out, body...)
	out = append(out, byte(checksum>>8), byte(checksum&0xFF))
	return out, nil
}

// MustEncode encodes p and panics on error.
func MustEncode(p *Packet) []byte {
	b, err := Encode(p)
	if err != nil {
		panic(fmt.Sprintf("pentair2: encode error: %v", err))
	}
	return b
}
