package pentair2

import (
	"fmt"
	"time"

	"github.com/pentacore/bridge/internal/wire"
)

// Decoder implements the Pentair-2 resumable state machine, the sibling of
// pentair16.Decoder with a shorter two-byte fixed header in place of a
// three-byte preamble.
type Decoder struct {
	state   int
	frame   []byte
	length  byte
	pending []byte

	lastByteAt    time.Time
	framingErrors int
}

// NewDecoder creates a Pentair-2 decoder ready to hunt for a header.
func NewDecoder() *Decoder {
	return &Decoder{state: stateHunt}
}

// FramingErrors reports the number of frames aborted for exceeding the
// inter-byte timeout.
func (d *Decoder) FramingErrors() int { return d.framingErrors }

func (d *Decoder) reset() {
	d.state = stateHunt
	d.frame = nil
	d.length = 0
}

// DecodeByte feeds one byte through the state machine.
func (d *Decoder) DecodeByte(b byte) (*Packet, error) {
	now := time.Now()
	if d.state != stateHunt && !d.lastByteAt.IsZero() && now.Sub(d.lastByteAt) > interByteTimeoutMs*time.Millisecond {
		d.framingErrors++
		d.reset()
	}
	d.lastByteAt = now

	d.pending = append(d.pending, b)
	for len(d.pending) > 0 {
		cur := d.pending[0]
		d.pending = d.pending[1:]

		pkt, err, resync := d.step(cur)
		if len(resync) > 0 {
			d.pending = append(resync, d.pending...)
		}
		if pkt != nil || err != nil {
			return pkt, err
		}
	}
	return nil, nil
}

func (d *Decoder) step(b byte) (*Packet, error, []byte) {
	switch d.state {
	case stateHunt:
		d.frame = append(d.frame, b)
		if !matchesHeaderTail(d.frame) {
			d.frame = trimToHeaderTail(d.frame)
			return nil, nil, nil
		}
		if len(d.frame) == 2 {
			d.state = stateHeader
		}
		return nil, nil, nil

	case stateHeader:
		d.frame = append(d.frame, b)
		if len(d.frame) == 2+3 {
			d.state = stateLength
		}
		return nil, nil, nil

	case stateLength:
		if b > MaxPayloadSize {
			bad := d.frame
			d.reset()
			return nil, fmt.Errorf("pentair2: invalid length %d", b), resyncFrom(bad)
		}
		d.length = b
		d.frame = append(d.frame, b)
		if d.length == 0 {
			d.state = stateChecksum
		} else {
			d.state = stateBody
		}
		return nil, nil, nil

	case stateBody:
		d.frame = append(d.frame, b)
		if len(d.frame)-6 >= int(d.length) {
			d.state = stateChecksum
		}
		return nil, nil, nil

	case stateChecksum:
		d.frame = append(d.frame, b)
		wantLen := 6 + int(d.length) + 2
		if len(d.frame) < wantLen {
			return nil, nil, nil
		}
		body := d.frame[:wantLen-2]
		gotHi, gotLo := d.frame[wantLen-2], d.frame[wantLen-1]
		got := uint16(gotHi)<<8 | uint16(gotLo)
		want := wire.Checksum(body)
		if got != want {
			bad := d.frame
			d.reset()
			return nil, fmt.Errorf("pentair2: checksum mismatch: got 0x%04X want 0x%04X", got, want), resyncFrom(bad)
		}
		pkt := &Packet{
			Dest:      body[2],
			Src:       body[3],
			Action:    body[4],
			Payload:   append([]byte(nil), body[6:]...),
			Checksum:  got,
			Timestamp: time.Now(),
		}
		d.reset()
		return pkt, nil, nil

	default:
		d.reset()
		return nil, fmt.Errorf("pentair2: invalid decoder state"), nil
	}
}

func resyncFrom(frame []byte) []byte {
	if len(frame) <= 1 {
		return nil
	}
	out := make([]byte, len(frame)-1)
	copy(out, frame[1:])
	return out
}

var header = [2]byte{HeaderByte0, HeaderByte1}

func matchesHeaderTail(frame []byte) bool {
	for i, b := range frame {
		if i > 1 {
			break
		}
		if b != header[i] {
			return false
		}
	}
	return true
}

func trimToHeaderTail(frame []byte) []byte {
	for start := 1; start < len(frame); start++ {
		cand := frame[start:]
		if matchesHeaderTail(cand) {
			return cand
		}
	}
	return nil
}
