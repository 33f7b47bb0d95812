package transaction

import (
	"context"
	"sync"
	"time"

	"github.com/pentacore/bridge/internal/bridgeerr"
	"github.com/pentacore/bridge/internal/metrics"
	"github.com/pentacore/bridge/internal/port"
	"github.com/rs/zerolog/log"
)

// Spontaneous receives inbound frames the Matcher could not correlate to
// any in-flight transaction; the Board Dispatch registers one of these per
// port to treat them as unsolicited status.
type Spontaneous func(f *Frame)

// Engine is the per-port transaction machinery described in spec §4.4: an
// outbound priority queue, a pacer, a response matcher, and an inbound
// dispatcher. Writes to the bound Port are serialized by a single writer
// goroutine, matching the spec's "cooperative single-writer" requirement.
type Engine struct {
	Port    *port.Port
	decode  Decoder
	pacer   *Pacer
	matcher *Matcher
	queue   *Queue
	queueCh chan struct{}
	spont   Spontaneous

	mu      sync.Mutex
	retries int

	// Correlate extracts a variant-specific correlating id from an inbound
	// frame (e.g. a sequence byte embedded in the payload). Boards that
	// don't use one can leave this nil; it then always correlates on
	// (peer, action) alone.
	Correlate func(*Frame) int

	stop chan struct{}
}

// NewEngine constructs an Engine bound to p, decoding inbound bytes with
// decode and routing unmatched frames to spont.
func NewEngine(p *port.Port, decode Decoder, pacerCfg PacerConfig, spont Spontaneous) *Engine {
	return &Engine{
		Port:    p,
		decode:  decode,
		pacer:   NewPacer(pacerCfg),
		matcher: NewMatcher(),
		queue:   NewQueue(),
		queueCh: make(chan struct{}, 1),
		spont:   spont,
		stop:    make(chan struct{}),
	}
}

// Enqueue submits an outbound message for transmission.
func (e *Engine) Enqueue(o *Outbound) {
	e.mu.Lock()
	e.queue.Enqueue(o)
	e.mu.Unlock()
	select {
	case e.queueCh <- struct{}{}:
	default:
	}
}

// QueueDepth reports the number of outbound messages not yet transmitted.
func (e *Engine) QueueDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

// Run drives both the outbound writer loop and the inbound reader loop
// until Stop is called. It should be started in its own goroutine.
func (e *Engine) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.writerLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		e.readerLoop(ctx)
	}()
	wg.Wait()
}

func (e *Engine) Stop() {
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

func (e *Engine) writerLoop(ctx context.Context) {
	for {
		select {
		case <-e.stop:
			return
		case <-ctx.Done():
			return
		case <-e.queueCh:
		}

		for {
			e.mu.Lock()
			o := e.queue.Dequeue()
			e.mu.Unlock()
			if o == nil {
				break
			}
			e.transmit(ctx, o)
		}
	}
}

func (e *Engine) transmit(ctx context.Context, o *Outbound) {
	if err := e.pacer.Wait(ctx, e.Port.Idle); err != nil {
		if o.OnResult != nil {
			o.OnResult(&MatchResult{Err: &bridgeerr.CancelledError{}})
		}
		return
	}

	backoffs := o.RetryBackoffMs
	if len(backoffs) == 0 {
		backoffs = []int{250, 500, 1000}
	}
	maxRetries := o.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	timeout := time.Duration(o.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		var waitCh <-chan MatchResult
		if o.ExpectedAction != 0 || o.CorrelatingID != 0 {
			waitCh = e.matcher.Register(o.ExpectedPeer, o.ExpectedAction, o.CorrelatingID)
		}

		if err := e.Port.Write(o.Frame); err != nil {
			if o.OnResult != nil {
				o.OnResult(&MatchResult{Err: err})
			}
			return
		}

		if waitCh == nil {
			if o.OnResult != nil {
				o.OnResult(&MatchResult{Matched: true})
			}
			return
		}

		select {
		case res := <-waitCh:
			if o.OnResult != nil {
				o.OnResult(&res)
			}
			return
		case <-time.After(timeout):
			e.matcher.Cancel(o.ExpectedPeer, o.ExpectedAction, o.CorrelatingID)
		case <-e.stop:
			return
		case <-ctx.Done():
			return
		}

		if attempt < maxRetries {
			delay := backoffs[attempt]
			if attempt >= len(backoffs) {
				delay = backoffs[len(backoffs)-1]
			}
			metrics.Incr("transaction.retry")
			select {
			case <-time.After(time.Duration(delay) * time.Millisecond):
			case <-e.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}

	if o.OnResult != nil {
		o.OnResult(&MatchResult{Err: &bridgeerr.NoResponseError{PortID: e.Port.ID, MsgDescriptor: "timeout"}})
	}
}

func (e *Engine) readerLoop(ctx context.Context) {
	buf := make([]byte, 256)
	for {
		select {
		case <-e.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		n, err := e.Port.Read(buf)
		if err != nil {
			select {
			case <-time.After(50 * time.Millisecond):
			case <-e.stop:
				return
			case <-ctx.Done():
				return
			}
			continue
		}

		for i := 0; i < n; i++ {
			frame, decErr := e.decode(buf[i])
			if decErr != nil {
				metrics.Incr("transaction.framing_error", "port", e.Port.Name)
				log.Debug().Err(decErr).Str("port", e.Port.Name).Msg("frame decode error")
				continue
			}
			if frame == nil {
				continue
			}
			corr := 0
			if e.Correlate != nil {
				corr = e.Correlate(frame)
			}
			if !e.matcher.Complete(frame.Src, frame.Action, corr, frame.Payload) {
				if e.spont != nil {
					e.spont(frame)
				}
			}
		}
	}
}
