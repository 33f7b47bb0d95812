package pentair16

import (
	"fmt"

	"github.com/pentacore/bridge/internal/wire"
)

// Encode produces the contiguous wire bytes for a Packet: preamble, header,
// envelope, payload, and checksum. No partial writes are ever visible to
// the Port layer — Encode returns one complete buffer or an error.
func Encode(p *Packet) ([]byte, error) {
	if len(p.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("pentair16: payload too large: %d bytes (max %d)", len(p.Payload), MaxPayloadSize)
	}

	body := make([]byte, 0, 5+len(p.Payload))
	body = append(body, HeaderByte, p.PreambleFlag, p.Dest, p.Src, p.Action, byte(len(p.Payload)))
	body = append(body, p.Payload...)

	checksum := wire.Checksum(body)
	p.Checksum = checksum

	out := make([]byte, 0, 3+len(body)+2)
	out = append(out, PreambleByte0, PreambleByte1, PreambleByte2)
	out = append(out, body...)
	out = append(out, byte(checksum>>8), byte(checksum&0xFF))
	return out, nil
}

// MustEncode encodes p and panics on error; used by callers (discovery
// broadcasts, schedule execution) that construct frames from validated
// in-process values and cannot fail at encode time.
func MustEncode(p *Packet) []byte {
	b, err := Encode(p)
	if err != nil {
		panic(fmt.Sprintf("pentair16: encode error: %v", err))
	}
	return b
}
