// Package pentair2 implements the IntelliCenter framing variant: a
// two-byte fixed header followed by a four-field envelope, no preamble
// hunt beyond the header bytes themselves. Structured as pentair16's
// sibling package, the same way the teacher keeps helios_protocol and
// fusain as parallel protocol packages for two device generations.
package pentair2

// Frame header bytes.
const (
	HeaderByte0 = 0xA5
	HeaderByte1 = 0x00
)

// MaxPayloadSize bounds a single frame's payload.
const MaxPayloadSize = 255

// Decoder states: Hunt -> Header -> Length -> Body -> Checksum -> Emit|Reject.
const (
	stateHunt = iota
	stateHeader
	stateLength
	stateBody
	stateChecksum
)

const interByteTimeoutMs = 250
