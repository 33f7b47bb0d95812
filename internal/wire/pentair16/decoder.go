package pentair16

import (
	"fmt"
	"time"

	"github.com/pentacore/bridge/internal/wire"
)

// Decoder implements the Pentair-16 resumable state machine:
// Hunt -> Header -> Length -> Body -> Checksum -> Emit|Reject (spec.md
// §4.2). On checksum failure the leading byte of the rejected frame is
// discarded and hunting resumes from the next byte — a single-byte resync
// rather than discarding the whole candidate frame, since a false preamble
// match one byte in is enough to desync a real frame.
type Decoder struct {
	state   int
	frame   []byte // bytes of the current candidate frame, from the first preamble byte
	length  byte
	pending []byte // bytes awaiting (re)processing, used to implement resync without recursion

	lastByteAt    time.Time
	framingErrors int
}

// NewDecoder creates a Pentair-16 decoder ready to hunt for a preamble.
func NewDecoder() *Decoder {
	return &Decoder{state: stateHunt}
}

// FramingErrors reports the number of frames aborted for exceeding the
// inter-byte timeout, a counter the Port layer surfaces as `framingError`.
func (d *Decoder) FramingErrors() int { return d.framingErrors }

func (d *Decoder) reset() {
	d.state = stateHunt
	d.frame = nil
	d.length = 0
}

// DecodeByte feeds one byte through the state machine. It returns a
// completed, checksum-verified Packet, or an error on checksum mismatch or
// an invalid length byte; both cases resync and keep consuming input. A
// stalled frame (inter-byte timeout) is dropped without an error and
// counted in FramingErrors. Callers should keep calling DecodeByte with
// subsequent bytes regardless of a returned error.
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

// step processes a single byte and returns at most one of (packet, error).
// When a checksum fails it additionally returns the bytes that must be
// replayed through Hunt, starting one byte past the abandoned frame's
// first byte.
func (d *Decoder) step(b byte) (*Packet, error, []byte) {
	switch d.state {
	case stateHunt:
		d.frame = append(d.frame, b)
		if !matchesPreambleTail(d.frame) {
			// Keep only a tail that could still grow into a match.
			d.frame = trimToPreambleTail(d.frame)
			return nil, nil, nil
		}
		if len(d.frame) == 4 {
			d.state = stateHeader
		}
		return nil, nil, nil

	case stateHeader:
		d.frame = append(d.frame, b)
		if len(d.frame) == 4+4 {
			d.state = stateLength
		}
		return nil, nil, nil

	case stateLength:
		if b > MaxPayloadSize {
			bad := d.frame
			d.reset()
			return nil, fmt.Errorf("pentair16: invalid length %d", b), resyncFrom(bad)
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
		if len(d.frame)-9 >= int(d.length) {
			d.state = stateChecksum
		}
		return nil, nil, nil

	case stateChecksum:
		d.frame = append(d.frame, b)
		// preamble(3)+header(1)+flag(1)+dest(1)+src(1)+action(1)+length(1)+payload(n)+cksum(2)
		wantLen := 11 + int(d.length)
		if len(d.frame) < wantLen {
			return nil, nil, nil
		}
		body := d.frame[3 : wantLen-2]
		gotHi, gotLo := d.frame[wantLen-2], d.frame[wantLen-1]
		got := uint16(gotHi)<<8 | uint16(gotLo)
		want := wire.Checksum(body)
		if got != want {
			bad := d.frame
			d.reset()
			return nil, fmt.Errorf("pentair16: checksum mismatch: got 0x%04X want 0x%04X", got, want), resyncFrom(bad)
		}
		pkt := &Packet{
			PreambleFlag: body[1],
			Dest:         body[2],
			Src:          body[3],
			Action:       body[4],
			Payload:      append([]byte(nil), body[6:]...),
			Checksum:     got,
			Timestamp:    time.Now(),
		}
		d.reset()
		return pkt, nil, nil

	default:
		d.reset()
		return nil, fmt.Errorf("pentair16: invalid decoder state"), nil
	}
}

// resyncFrom returns all but the first byte of a rejected candidate frame,
// to be replayed from Hunt — the "single-byte resync" spec.md §4.2 calls
// for on checksum failure.
func resyncFrom(frame []byte) []byte {
	if len(frame) <= 1 {
		return nil
	}
	out := make([]byte, len(frame)-1)
	copy(out, frame[1:])
	return out
}

var preamble = [3]byte{PreambleByte0, PreambleByte1, PreambleByte2}

// matchesPreambleTail reports whether frame is a prefix of preamble+header
// (FF 00 FF A5) so far.
func matchesPreambleTail(frame []byte) bool {
	for i, b := range frame {
		switch i {
		case 0:
			if b != preamble[0] {
				return false
			}
		case 1:
			if b != preamble[1] {
				return false
			}
		case 2:
			if b != preamble[2] {
				return false
			}
		case 3:
			if b != HeaderByte {
				return false
			}
		}
	}
	return true
}

// trimToPreambleTail slides the hunt window so a byte sequence that fails
// to extend the current match but itself starts a new preamble is not
// lost (e.g. "...FF FF 00 FF A5").
func trimToPreambleTail(frame []byte) []byte {
	for start := 1; start < len(frame); start++ {
		cand := frame[start:]
		if matchesPreambleTail(cand) {
			return cand
		}
	}
	return nil
}
