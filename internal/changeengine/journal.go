package changeengine

import (
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// journalEntry is one committed diff, recorded for post-mortem debugging.
// This is not the wire protocol (spec §4.2 mandates raw fixed-field binary
// for that); CBOR is a compact, self-describing encoding well suited to an
// append-only diagnostic log of heterogeneous post-images.
type journalEntry struct {
	At      time.Time   `cbor:"at"`
	Kind    EntityKind  `cbor:"kind"`
	ID      int         `cbor:"id"`
	Payload interface{} `cbor:"payload"`
}

// Journal appends CBOR-encoded commit records to a single file, kept apart
// from the live pool-config/pool-state files; ReadJournal reads it back.
type Journal struct {
	mu   sync.Mutex
	f    *os.File
	mode cbor.EncMode
}

// OpenJournal opens (creating if absent) the journal file at path for
// appending.
func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Journal{f: f, mode: mode}, nil
}

// Append writes one journal entry, length-prefixed implicitly by CBOR's
// self-describing encoding so entries can be streamed back with a bare
// decoder.
func (j *Journal) Append(kind EntityKind, id int, payload interface{}) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := journalEntry{At: time.Now(), Kind: kind, ID: id, Payload: payload}
	data, err := j.mode.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = j.f.Write(data)
	return err
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.f.Close()
}

// ReadJournal decodes every entry from path in order.
func ReadJournal(path string) ([]journalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := cbor.NewDecoder(f)
	var entries []journalEntry
	for {
		var e journalEntry
		if err := dec.Decode(&e); err != nil {
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}
