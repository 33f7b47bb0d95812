// Package port owns the physical and virtual RS-485 endpoints the bridge
// talks to: native serial, TCP-bridged serial, and the in-memory loopback
// used by the offline simulator. It is the layer described in spec §4.1.
package port

import (
	"io"
	"sync"
	"time"
)

// State is the lifecycle state of a Port.
type State int

const (
	StateOpen State = iota
	// StateProbing is a transport that has reopened after a reconnect but
	// has not yet proven itself live: writes are refused until
	// stabilityWindow of consecutive clean reads has elapsed, per spec
	// §4.1's "consecutive successful reads for 2 s return the Port to
	// open."
	StateProbing
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateProbing:
		return "probing"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// stabilityWindow is the duration of consecutive clean reads a reconnected
// Port must accumulate before transitioning from StateProbing to
// StateOpen (spec §4.1).
const stabilityWindow = 2 * time.Second

// Stats mirrors the counters spec §4.1 requires: bytesIn, bytesOut,
// reconnects, lastError.
type Stats struct {
	BytesIn    uint64
	BytesOut   uint64
	Reconnects uint64
	LastError  string
}

// Conn is the minimal byte-stream contract a transport must satisfy. Serial
// ports, TCP sockets, and the loopback buffer all already implement this.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// Opener constructs a fresh Conn on demand; it is called once at startup and
// again on every reconnect attempt.
type Opener func() (Conn, error)

// Port wraps a Conn with reconnect-on-failure, idle detection, and byte
// counters. It is the concrete, transport-agnostic thing the Transaction
// Engine reads from and writes to.
type Port struct {
	ID   int
	Name string

	open   Opener
	mu     sync.RWMutex
	conn   Conn
	state  State
	stats  Stats
	closed chan struct{}

	lastByteAt   time.Time
	idleAfter    time.Duration
	cleanReadsAt time.Time

	onStateChange func(State)
}

// Config carries the knobs Port needs beyond the transport itself.
type Config struct {
	ID            int
	Name          string
	IdleBeforeTx  time.Duration
	OnStateChange func(State)
}

// New constructs a Port bound to the given Opener and immediately attempts
// the first open. If the initial open fails, the Port starts in
// reconnecting state rather than returning an error, since transport loss is
// an expected, recoverable condition.
func New(cfg Config, opener Opener) *Port {
	if cfg.IdleBeforeTx <= 0 {
		cfg.IdleBeforeTx = 40 * time.Millisecond
	}
	p := &Port{
		ID:            cfg.ID,
		Name:          cfg.Name,
		open:          opener,
		closed:        make(chan struct{}),
		idleAfter:     cfg.IdleBeforeTx,
		onStateChange: cfg.OnStateChange,
	}
	// The first open has no prior failure to recover from, so it goes
	// straight to StateOpen; only a reconnect's liveness probe needs to
	// earn its way back with a stability window (see Run).
	p.attemptOpen(false)
	return p
}

func (p *Port) setState(s State) {
	p.mu.Lock()
	changed := p.state != s
	p.state = s
	p.mu.Unlock()
	if changed && p.onStateChange != nil {
		p.onStateChange(s)
	}
}

// attemptOpen opens the underlying transport. If requireStability is set
// (a reconnect's liveness probe), the Port lands in StateProbing and must
// earn StateOpen via stabilityWindow of clean reads in Read; otherwise it
// goes directly to StateOpen.
func (p *Port) attemptOpen(requireStability bool) {
	conn, err := p.open()
	if err != nil {
		wrapped := p.errPortUnavailable(err)
		p.mu.Lock()
		p.stats.LastError = wrapped.Error()
		p.mu.Unlock()
		p.setState(StateReconnecting)
		return
	}
	p.mu.Lock()
	p.conn = conn
	p.cleanReadsAt = time.Time{}
	p.mu.Unlock()
	if requireStability {
		p.setState(StateProbing)
		return
	}
	p.setState(StateOpen)
}

// State returns the Port's current lifecycle state.
func (p *Port) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Stats returns a snapshot of the Port's connection counters.
func (p *Port) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// Idle reports whether the bus has been quiet for at least IdleBeforeTx,
// the condition the Transaction Engine's pacer waits on before transmitting.
func (p *Port) Idle() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastByteAt.IsZero() {
		return true
	}
	return time.Since(p.lastByteAt) >= p.idleAfter
}

// Write sends bytes to the underlying transport. It fails with
// bridgeerr.PortClosed if the port is not open, and with
// bridgeerr.WriteRejected if the transport rejects the write outright.
func (p *Port) Write(data []byte) error {
	p.mu.RLock()
	state := p.state
	conn := p.conn
	p.mu.RUnlock()

	if state != StateOpen || conn == nil {
		return p.errPortClosed()
	}

	n, err := conn.Write(data)
	if err != nil {
		p.recordFailure(err)
		return p.errWriteRejected(err)
	}
	p.mu.Lock()
	p.stats.BytesOut += uint64(n)
	p.mu.Unlock()
	return nil
}

// Read pulls up to len(buf) bytes from the transport, updating byte counters
// and idle tracking. It blocks on the underlying Conn's Read semantics.
// Reads are accepted in both StateOpen and StateProbing, since the clean
// reads accumulated while probing are precisely the evidence that promotes
// a reconnected Port back to StateOpen.
func (p *Port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	state := p.state
	conn := p.conn
	p.mu.RUnlock()

	if (state != StateOpen && state != StateProbing) || conn == nil {
		return 0, p.errPortClosed()
	}

	n, err := conn.Read(buf)
	if err != nil {
		p.recordFailure(err)
		return n, p.errPortClosed()
	}
	if n > 0 {
		p.mu.Lock()
		p.stats.BytesIn += uint64(n)
		p.lastByteAt = time.Now()
		if p.cleanReadsAt.IsZero() {
			p.cleanReadsAt = time.Now()
		}
		stable := p.state == StateProbing && time.Since(p.cleanReadsAt) >= stabilityWindow
		p.mu.Unlock()
		if stable {
			p.setState(StateOpen)
		}
	}
	return n, nil
}

func (p *Port) recordFailure(err error) {
	p.mu.Lock()
	p.stats.LastError = err.Error()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	p.mu.Unlock()
	p.setState(StateReconnecting)
}

// Run drives the reconnect state machine until ctx-equivalent shutdown via
// Close. It should be started once in its own goroutine per Port.
func (p *Port) Run(stop <-chan struct{}) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-stop:
			return
		case <-p.closed:
			return
		default:
		}

		if p.State() != StateReconnecting {
			select {
			case <-time.After(100 * time.Millisecond):
				continue
			case <-stop:
				return
			case <-p.closed:
				return
			}
		}

		select {
		case <-stop:
			return
		case <-p.closed:
			return
		case <-time.After(backoff):
		}

		p.mu.Lock()
		p.stats.Reconnects++
		p.mu.Unlock()

		p.attemptOpen(true)
		if s := p.State(); s == StateOpen || s == StateProbing {
			backoff = time.Second
			continue
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// Close shuts the port down permanently; Run will exit and no further
// reconnect attempts occur.
func (p *Port) Close() error {
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()

	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	p.setState(StateClosed)

	if conn != nil {
		return conn.Close()
	}
	return nil
}
