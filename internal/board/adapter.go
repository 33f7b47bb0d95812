package board

import (
	"github.com/pentacore/bridge/internal/transaction"
	"github.com/pentacore/bridge/internal/wire/pentair16"
	"github.com/pentacore/bridge/internal/wire/pentair2"
)

// Pentair16FrameDecoder adapts a fresh pentair16.Decoder into the
// variant-agnostic transaction.Decoder the Transaction Engine reads
// inbound bytes through. Shared by the pentair16-framed variants
// (IntelliTouch, EasyTouch, SunTouch, IntelliCom) so each doesn't
// reimplement the adaptation.
func Pentair16FrameDecoder() transaction.Decoder {
	d := pentair16.NewDecoder()
	return func(b byte) (*transaction.Frame, error) {
		pkt, err := d.DecodeByte(b)
		if err != nil {
			return nil, err
		}
		if pkt == nil {
			return nil, nil
		}
		return &transaction.Frame{
			Dest:      pkt.Dest,
			Src:       pkt.Src,
			Action:    pkt.Action,
			Payload:   pkt.Payload,
			Timestamp: pkt.Timestamp,
		}, nil
	}
}

// Pentair2FrameDecoder is the IntelliCenter equivalent of
// Pentair16FrameDecoder, adapting pentair2.Decoder's output.
func Pentair2FrameDecoder() transaction.Decoder {
	d := pentair2.NewDecoder()
	return func(b byte) (*transaction.Frame, error) {
		pkt, err := d.DecodeByte(b)
		if err != nil {
			return nil, err
		}
		if pkt == nil {
			return nil, nil
		}
		return &transaction.Frame{
			Dest:      pkt.Dest,
			Src:       pkt.Src,
			Action:    pkt.Action,
			Payload:   pkt.Payload,
			Timestamp: pkt.Timestamp,
		}, nil
	}
}
