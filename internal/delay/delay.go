// Package delay implements the Delay Manager of spec §4.7: a keyed
// registry of active timers that block or defer equipment operations for
// startup staggering, change cooldowns, interlocks, and heater cooldown.
package delay

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/pentacore/bridge/internal/bridgeerr"
)

// Purpose names one of the delay categories spec §4.7 enumerates.
type Purpose string

const (
	PurposeStartupStagger Purpose = "startup-stagger"
	PurposeChangeCooldown Purpose = "change-cooldown"
	PurposeInterlock      Purpose = "interlock"
	PurposeHeaterCooldown Purpose = "heater-cooldown"
)

// Default cooldown windows per spec §4.7.
const (
	StartupStaggerWindow = 2 * time.Second
	PumpChangeCooldown   = 30 * time.Second
	HeaterChangeCooldown = 120 * time.Second
)

type key struct {
	entityKind string
	id         int
	purpose    Purpose
}

func (k key) String() string {
	return fmt.Sprintf("%s:%d:%s", k.entityKind, k.id, k.purpose)
}

// PendingOp is an operation deferred until its blocking delay clears.
type PendingOp struct {
	Apply func()
}

// Manager is the single-writer keyed timer registry. It wraps
// patrickmn/go-cache for TTL-plus-eviction-callback semantics: a timer's
// expiry is the cache entry's TTL, and the eviction callback drains any
// operation queued in that timer's pending slot.
type Manager struct {
	mu      sync.Mutex
	cache   *cache.Cache
	pending map[string][]PendingOp

	interlocks map[string]struct{}
}

func NewManager() *Manager {
	c := cache.New(cache.NoExpiration, time.Second)
	m := &Manager{
		cache:      c,
		pending:    make(map[string][]PendingOp),
		interlocks: make(map[string]struct{}),
	}
	c.OnEvicted(func(k string, _ interface{}) {
		m.drain(k)
	})
	return m
}

// Active reports whether a timer is currently running for the given key.
func (m *Manager) Active(entityKind string, id int, purpose Purpose) bool {
	k := key{entityKind, id, purpose}
	_, found := m.cache.Get(k.String())
	return found
}

// Start begins a timer for the given key with the given duration. If one
// is already running it is reset to the new duration (last-write-wins).
func (m *Manager) Start(entityKind string, id int, purpose Purpose, d time.Duration) {
	k := key{entityKind, id, purpose}
	m.cache.Set(k.String(), struct{}{}, d)
	// Sweep as soon as this timer can have expired, so the eviction
	// callback drains the pending slot without waiting for the janitor.
	time.AfterFunc(d, m.cache.DeleteExpired)
}

// SetInterlock declares a standing prohibition identified by name, active
// until ClearInterlock is called (interlocks are level-triggered, not timed).
func (m *Manager) SetInterlock(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interlocks[name] = struct{}{}
}

func (m *Manager) ClearInterlock(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.interlocks, name)
}

// CheckInterlock returns an InterlockViolationError if name is active.
func (m *Manager) CheckInterlock(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, active := m.interlocks[name]; active {
		return &bridgeerr.InterlockViolationError{ConflictingKey: name}
	}
	return nil
}

// Guard runs op immediately if no delay blocks (entityKind, id, purpose);
// otherwise, unless immediate is set, it queues op for when the delay
// clears and returns nil. With immediate set, a blocked op fails fast
// with InterlockViolation.
func (m *Manager) Guard(entityKind string, id int, purpose Purpose, immediate bool, op func()) error {
	if !m.Active(entityKind, id, purpose) {
		op()
		return nil
	}
	if immediate {
		return &bridgeerr.InterlockViolationError{ConflictingKey: key{entityKind, id, purpose}.String()}
	}
	k := key{entityKind, id, purpose}
	m.mu.Lock()
	m.pending[k.String()] = append(m.pending[k.String()], PendingOp{Apply: op})
	m.mu.Unlock()
	return nil
}

func (m *Manager) drain(k string) {
	m.mu.Lock()
	ops := m.pending[k]
	delete(m.pending, k)
	m.mu.Unlock()
	for _, op := range ops {
		op.Apply()
	}
}
