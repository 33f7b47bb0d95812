package changeengine

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// debouncer flushes a root's snapshot to disk no sooner than quietWindow
// after the last mutation, but no later than maxWindow after the first
// unflushed mutation, per spec §3/§4.6.
type debouncer struct {
	quietWindow time.Duration
	maxWindow   time.Duration
	flush       func() error

	mu           sync.Mutex
	dirty        bool
	firstDirtyAt time.Time
	timer        *time.Timer

	consecutiveFailures int
}

func newDebouncer(quiet, max time.Duration, flush func() error) *debouncer {
	return &debouncer{quietWindow: quiet, maxWindow: max, flush: flush}
}

// MarkDirty schedules (or reschedules) a flush. Called on every committed
// mutation to the root this debouncer guards.
func (d *debouncer) MarkDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if !d.dirty {
		d.dirty = true
		d.firstDirtyAt = now
	}

	wait := d.quietWindow
	if elapsed := now.Sub(d.firstDirtyAt); elapsed+wait > d.maxWindow {
		wait = d.maxWindow - elapsed
		if wait < 0 {
			wait = 0
		}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(wait, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if !d.dirty {
		d.mu.Unlock()
		return
	}
	d.dirty = false
	d.mu.Unlock()

	if err := d.flush(); err != nil {
		d.mu.Lock()
		d.consecutiveFailures++
		failures := d.consecutiveFailures
		d.mu.Unlock()
		log.Error().Err(err).Int("consecutive_failures", failures).Msg("persistence flush failed")
		if failures >= 3 {
			log.Warn().Msg("persistence.failing: three consecutive flush failures")
		}
		// Retry on the same debounce schedule rather than rolling back
		// in-memory state (spec §7 propagation policy).
		d.MarkDirty()
		return
	}

	d.mu.Lock()
	d.consecutiveFailures = 0
	d.mu.Unlock()
}

// Flush forces an immediate write regardless of the debounce window, used
// at shutdown.
func (d *debouncer) Flush() error {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.dirty = false
	d.mu.Unlock()
	return d.flush()
}
