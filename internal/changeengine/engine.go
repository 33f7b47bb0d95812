package changeengine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pentacore/bridge/internal/model"
	"github.com/rs/zerolog/log"
)

// Root identifies which persisted file a commit touches.
type Root int

const (
	RootConfig Root = 1 << iota
	RootState
)

// Mutation is applied under the Engine's single-writer commit lane. It
// receives the live graphs, makes its changes, and returns the events the
// Bus should publish plus which roots it touched.
type Mutation func(cfg *model.ConfigGraph, st *model.StateGraph) (events []Event, touched Root)

type commitRequest struct {
	mutate Mutation
	done   chan struct{}
}

// Engine is the Change Engine of spec §4.6: it owns the live configuration
// and state graphs, serializes all mutations through a single commit lane,
// fans out events, and debounces persistence.
type Engine struct {
	cfg *model.ConfigGraph
	st  *model.StateGraph

	bus *Bus

	configDebounce *debouncer
	stateDebounce  *debouncer

	journal *Journal

	commits chan commitRequest
	stop    chan struct{}

	configPath string
	statePath  string
}

// Config carries the Engine's persistence paths and debounce windows.
type Config struct {
	ConfigPath   string
	StatePath    string
	JournalPath  string
	QuietWindow  time.Duration
	MaxWindow    time.Duration
}

func DefaultConfig(dir string) Config {
	return Config{
		ConfigPath:  filepath.Join(dir, "pool-config.json"),
		StatePath:   filepath.Join(dir, "pool-state.json"),
		JournalPath: filepath.Join(dir, "pool-journal.cbor"),
		QuietWindow: 3 * time.Second,
		MaxWindow:   30 * time.Second,
	}
}

// New loads (or recovers) the persisted graphs and starts the commit lane.
// A ConfigurationCorrupt event is published for each root that needed
// recovery.
func New(cfg Config) (*Engine, error) {
	e := &Engine{
		cfg:        model.NewConfigGraph(),
		st:         model.NewStateGraph(),
		bus:        NewBus(),
		commits:    make(chan commitRequest, 64),
		stop:       make(chan struct{}),
		configPath: cfg.ConfigPath,
		statePath:  cfg.StatePath,
	}

	if recovered, err := loadJSONOrRecover(cfg.ConfigPath, e.cfg); recovered {
		e.cfg = model.NewConfigGraph()
		e.bus.Publish(Event{Kind: KindConfigCorrupt, At: time.Now()})
	} else if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if recovered, err := loadJSONOrRecover(cfg.StatePath, e.st); recovered {
		e.st = model.NewStateGraph()
		e.bus.Publish(Event{Kind: KindConfigCorrupt, At: time.Now()})
	} else if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	orphans := e.st.PruneOrphans(e.cfg)
	if orphans > 0 {
		log.Info().Int("count", orphans).Msg("pruned orphaned state entries")
	}

	e.configDebounce = newDebouncer(cfg.QuietWindow, cfg.MaxWindow, func() error {
		return atomicWriteJSON(e.configPath, e.cfg)
	})
	e.stateDebounce = newDebouncer(cfg.QuietWindow, cfg.MaxWindow, func() error {
		return atomicWriteJSON(e.statePath, e.st)
	})

	if cfg.JournalPath != "" {
		j, err := OpenJournal(cfg.JournalPath)
		if err != nil {
			log.Warn().Err(err).Msg("failed to open diagnostic journal")
		} else {
			e.journal = j
		}
	}

	go e.run()
	return e, nil
}

// Commit submits a mutation to the single-writer lane and blocks until it
// has been applied, events published, and debounce timers marked.
func (e *Engine) Commit(m Mutation) {
	req := commitRequest{mutate: m, done: make(chan struct{})}
	e.commits <- req
	<-req.done
}

func (e *Engine) run() {
	for {
		select {
		case <-e.stop:
			return
		case req := <-e.commits:
			events, touched := req.mutate(e.cfg, e.st)
			for _, ev := range events {
				ev.At = time.Now()
				e.bus.Publish(ev)
				if e.journal != nil {
					_ = e.journal.Append(ev.Kind, ev.ID, ev.PostImage)
				}
			}
			if touched&RootConfig != 0 {
				e.configDebounce.MarkDirty()
			}
			if touched&RootState != 0 {
				e.stateDebounce.MarkDirty()
			}
			close(req.done)
		}
	}
}

// Subscribe registers a new event sink for the given kind.
func (e *Engine) Subscribe(kind EntityKind) *Sink { return e.bus.Subscribe(kind) }

// SnapshotConfig returns a deep copy of the configuration graph, safe for
// the caller to read without synchronization (spec §5: readers obtain a
// stable snapshot).
func (e *Engine) SnapshotConfig() *model.ConfigGraph {
	done := make(chan *model.ConfigGraph, 1)
	e.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]Event, Root) {
		done <- deepCopyConfig(cfg)
		return nil, 0
	})
	return <-done
}

// SnapshotState returns a deep copy of the state graph.
func (e *Engine) SnapshotState() *model.StateGraph {
	done := make(chan *model.StateGraph, 1)
	e.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]Event, Root) {
		done <- deepCopyState(st)
		return nil, 0
	})
	return <-done
}

func deepCopyConfig(cfg *model.ConfigGraph) *model.ConfigGraph {
	data, err := json.Marshal(cfg)
	if err != nil {
		return cfg
	}
	out := model.NewConfigGraph()
	_ = json.Unmarshal(data, out)
	return out
}

func deepCopyState(st *model.StateGraph) *model.StateGraph {
	data, err := json.Marshal(st)
	if err != nil {
		return st
	}
	out := model.NewStateGraph()
	_ = json.Unmarshal(data, out)
	return out
}

// Shutdown flushes both debouncers immediately and stops the commit lane,
// bounded by the caller's own deadline (spec §5: 5s hard shutdown
// deadline is enforced by the bridge package, not here).
func (e *Engine) Shutdown() error {
	close(e.stop)
	if err := e.configDebounce.Flush(); err != nil {
		return err
	}
	if err := e.stateDebounce.Flush(); err != nil {
		return err
	}
	if e.journal != nil {
		return e.journal.Close()
	}
	return nil
}
