package cli

import (
	"fmt"

	"github.com/pentacore/bridge/internal/board"
	"github.com/pentacore/bridge/internal/board/aqualink"
	"github.com/pentacore/bridge/internal/board/easytouch"
	"github.com/pentacore/bridge/internal/board/intellicenter"
	"github.com/pentacore/bridge/internal/board/intellicom"
	"github.com/pentacore/bridge/internal/board/intellitouch"
	"github.com/pentacore/bridge/internal/board/suntouch"
	"github.com/pentacore/bridge/internal/model"
	"github.com/pentacore/bridge/internal/transaction"
)

// newCodec resolves the configured controller type string to a Codec and
// its frame decoder. Standalone is handled by the caller directly since it
// has no wire protocol at all.
func newCodec(ctrlType string) (board.ControllerType, board.Codec, transaction.Decoder, error) {
	ct := board.ControllerType(ctrlType)
	switch ct {
	case board.IntelliTouch:
		return ct, intellitouch.New(), board.Pentair16FrameDecoder(), nil
	case board.EasyTouch:
		return ct, easytouch.New(), board.Pentair16FrameDecoder(), nil
	case board.SunTouch:
		return ct, suntouch.New(), board.Pentair16FrameDecoder(), nil
	case board.IntelliCom:
		return ct, intellicom.New(), board.Pentair16FrameDecoder(), nil
	case board.IntelliCenter:
		return ct, intellicenter.New(), board.Pentair2FrameDecoder(), nil
	case board.AquaLink:
		return ct, aqualink.New(true), board.Pentair16FrameDecoder(), nil
	default:
		return "", nil, nil, fmt.Errorf("unknown or unsupported controller type %q (Standalone is wired separately)", ctrlType)
	}
}

// heatRangeFor returns a conservative, widely-compatible heat/cool
// setpoint range. Exact per-variant ranges live in vendor documentation
// this spec does not reproduce; the bound below matches the common
// 65-104F span shared across the Pentair-family variants in the pack.
func heatRangeFor(board.ControllerType) board.HeatRangeLookup {
	return func(bodyID int) (model.HeatSetpointRange, error) {
		return model.HeatSetpointRange{MinF: 65, MaxF: 104}, nil
	}
}
