package changeengine

import (
	"sync"
	"sync/atomic"

	"github.com/pentacore/bridge/internal/metrics"
	"github.com/rs/zerolog/log"
)

// sinkQueueDepth bounds each subscriber's event buffer; beyond it, new
// events are dropped (drop-newest) and sinkOverflow increments, per spec
// §4.6: "back-pressure on a sink does not block the engine."
const sinkQueueDepth = 256

// Sink is a subscriber's event channel plus its own overflow counter.
type Sink struct {
	Kind EntityKind
	ch   chan Event

	overflow uint64
}

func newSink(kind EntityKind) *Sink {
	return &Sink{Kind: kind, ch: make(chan Event, sinkQueueDepth)}
}

// Events returns the channel of delivered events for this sink.
func (s *Sink) Events() <-chan Event { return s.ch }

// Overflow reports how many events this sink has dropped since creation.
func (s *Sink) Overflow() uint64 { return atomic.LoadUint64(&s.overflow) }

func (s *Sink) deliver(e Event) {
	select {
	case s.ch <- e:
	default:
		atomic.AddUint64(&s.overflow, 1)
		metrics.Incr("changeengine.sink_overflow", "kind", string(s.Kind))
		log.Warn().Str("kind", string(s.Kind)).Msg("sink overflow: dropping event")
	}
}

// Bus fans events out to every subscribed Sink, independently per kind.
type Bus struct {
	mu    sync.RWMutex
	sinks map[EntityKind][]*Sink
}

func NewBus() *Bus {
	return &Bus{sinks: make(map[EntityKind][]*Sink)}
}

// Subscribe registers a new Sink for the given kind.
func (b *Bus) Subscribe(kind EntityKind) *Sink {
	s := newSink(kind)
	b.mu.Lock()
	b.sinks[kind] = append(b.sinks[kind], s)
	b.mu.Unlock()
	return s
}

// Publish delivers e to every sink subscribed to e.Kind. Delivery is
// synchronous from the caller's point of view (each sink's channel send is
// attempted immediately) but never blocks: a full sink drops the event.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	sinks := b.sinks[e.Kind]
	b.mu.RUnlock()
	for _, s := range sinks {
		s.deliver(e)
	}
}
