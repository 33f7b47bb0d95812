package transaction

// Priority tiers an outbound message per spec §4.4: system traffic
// (discovery, clock sync) always drains ahead of user-originated commands,
// which in turn drain ahead of background polling.
type Priority int

const (
	PrioritySystem Priority = iota
	PriorityUser
	PriorityBackground
)

func (p Priority) String() string {
	switch p {
	case PrioritySystem:
		return "system"
	case PriorityUser:
		return "user"
	case PriorityBackground:
		return "background"
	default:
		return "unknown"
	}
}
