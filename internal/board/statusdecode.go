package board

import (
	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/model"
	"github.com/pentacore/bridge/internal/transaction"
)

// DecodeCircuitStatusPairs turns a status-reply frame whose payload is a
// flat sequence of (circuitID byte, onFlag byte) pairs into a Mutation that
// sets each named circuit's state. It is shared by every wire-framed
// variant's Codec since the pairwise-status-broadcast shape is common
// across the Pentair-16 and Pentair-2 families (spec §4.2's illustrative
// status frame). Applying the same frame twice is a no-op the second time,
// satisfying spec §4.5's idempotent-patch requirement.
func DecodeCircuitStatusPairs(f *transaction.Frame) changeengine.Mutation {
	if len(f.Payload) < 2 || len(f.Payload)%2 != 0 {
		return nil
	}
	pairs := make(map[int]bool, len(f.Payload)/2)
	for i := 0; i+1 < len(f.Payload); i += 2 {
		pairs[int(f.Payload[i])] = f.Payload[i+1] != 0
	}
	return func(cfg *model.ConfigGraph, st *model.StateGraph) ([]changeengine.Event, changeengine.Root) {
		var events []changeengine.Event
		for id, on := range pairs {
			s, ok := st.Circuits.Get(id)
			if !ok || s.IsOn == on {
				continue
			}
			s.IsOn = on
			st.Circuits.Upsert(s)
			events = append(events, changeengine.Event{Kind: changeengine.KindCircuit, ID: id, PostImage: s})
		}
		if len(events) == 0 {
			return nil, 0
		}
		return events, changeengine.RootState
	}
}
