// Package wire holds machinery shared by both frame-codec variants: the
// checksum used by the Pentair-16 and Pentair-2 framings (spec §4.2) and
// the byte-value map abstraction each board variant uses for every
// protocol-level enumeration (spec §4.3).
package wire

import "fmt"

// ValueRecord is one entry of a byte-value map: a numeric code (or bit
// position) bound to a name and description. Protocol-level comparisons
// and API serializations go through a ValueMap; the engine never compares
// names as strings internally.
type ValueRecord struct {
	Val  int
	Name string
	Desc string
}

// ValueMap is an immutable bidirectional numeric<->record table. Construct
// once at board-variant init time with NewValueMap; never mutate after.
type ValueMap struct {
	byVal  map[int]ValueRecord
	byName map[string]ValueRecord
}

// NewValueMap builds an immutable ValueMap from the given records. Panics
// on a duplicate Val or Name, since that indicates a malformed variant
// table caught at construction time rather than at lookup time.
func NewValueMap(records []ValueRecord) *ValueMap {
	m := &ValueMap{
		byVal:  make(map[int]ValueRecord, len(records)),
		byName: make(map[string]ValueRecord, len(records)),
	}
	for _, r := range records {
		if _, exists := m.byVal[r.Val]; exists {
			panic(fmt.Sprintf("wire: duplicate value map entry val=%d", r.Val))
		}
		if _, exists := m.byName[r.Name]; exists {
			panic(fmt.Sprintf("wire: duplicate value map entry name=%q", r.Name))
		}
		m.byVal[r.Val] = r
		m.byName[r.Name] = r
	}
	return m
}

// ByVal looks up a record by its numeric code.
func (m *ValueMap) ByVal(val int) (ValueRecord, bool) {
	r, ok := m.byVal[val]
	return r, ok
}

// ByName looks up a record by its canonical name. The textual name is
// always derived from the ValueMap, never authoritative on its own.
func (m *ValueMap) ByName(name string) (ValueRecord, bool) {
	r, ok := m.byName[name]
	return r, ok
}

// NameOf returns the display name for a code, or a hex fallback when the
// variant table has no entry (unknown codes must never panic a decoder).
func (m *ValueMap) NameOf(val int) string {
	if r, ok := m.byVal[val]; ok {
		return r.Name
	}
	return fmt.Sprintf("unknown(0x%02X)", val)
}

// Len reports the number of entries in the map.
func (m *ValueMap) Len() int { return len(m.byVal) }
