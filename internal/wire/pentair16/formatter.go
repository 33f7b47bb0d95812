package pentair16

import "fmt"

// Format renders a decoded packet in the human-readable form the `bridge
// decode` CLI tool and debug logs use, grounded on the teacher's
// formatPacket/formatPayload pair (main.go, pkg/helios_protocol/formatter.go).
func Format(p *Packet) string {
	ts := p.Timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] action=0x%02X dest=0x%02X src=0x%02X len=%d\n",
		ts, p.Action, p.Dest, p.Src, len(p.Payload))
	if len(p.Payload) == 0 {
		return result
	}
	result += "  payload: "
	for i, b := range p.Payload {
		if i > 0 && i%16 == 0 {
			result += "\n           "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}
