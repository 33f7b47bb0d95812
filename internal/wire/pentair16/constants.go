// Package pentair16 implements the framing variant used by
// IntelliTouch/EasyTouch/SunTouch/IntelliCom controllers: a three-byte
// preamble, single-byte header, and a five-field envelope. Grounded on the
// teacher's simpler helios_protocol state machine (no CBOR payload, no
// byte-stuffing — this wire format has neither), generalized to the
// preamble-hunting and checksum rules spec.md §4.2 defines for Pentair-16.
package pentair16

// Frame structure bytes.
const (
	PreambleByte0 = 0xFF
	PreambleByte1 = 0x00
	PreambleByte2 = 0xFF
	HeaderByte    = 0xA5
)

// MaxPayloadSize bounds a single frame's payload; frames beyond this are
// rejected at encode time and never reach the wire.
const MaxPayloadSize = 255

// Decoder states, named after spec.md §4.2's resumable state machine:
// Hunt -> Header -> Length -> Body -> Checksum -> Emit|Reject.
const (
	stateHunt = iota
	stateHeader
	stateLength
	stateBody
	stateChecksum
)

// interByteTimeoutMs is the window within which the remaining bytes of a
// started frame must arrive; an undersized payload stalled beyond this is
// aborted and counted as a framing error (spec.md §4.2).
const interByteTimeoutMs = 250
