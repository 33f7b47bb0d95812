package transaction

import "time"

// Frame is the variant-agnostic shape the Transaction Engine deals in. The
// Board Dispatch layer adapts pentair16.Packet / pentair2.Packet into this
// shape so the engine never needs to know which framing variant a port
// speaks.
type Frame struct {
	Dest      byte
	Src       byte
	Action    byte
	Payload   []byte
	Timestamp time.Time
}

// Decoder feeds one inbound byte through a variant's resumable decoder and
// reports a complete Frame, a framing/checksum error, or (nil, nil) when
// more bytes are needed.
type Decoder func(b byte) (*Frame, error)
