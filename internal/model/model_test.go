package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_UpsertGetRemove(t *testing.T) {
	c := NewCollection[CircuitConfig]()
	c.Upsert(CircuitConfig{ID: 6, Name: "Pool"})
	c.Upsert(CircuitConfig{ID: 1, Name: "Spa"})

	got, ok := c.Get(6)
	require.True(t, ok)
	assert.Equal(t, "Pool", got.Name)

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, 6, all[1].ID)

	found := c.Find(func(cc CircuitConfig) bool { return cc.Name == "Spa" })
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].ID)

	assert.True(t, c.Remove(6))
	assert.False(t, c.Remove(6))
	assert.Equal(t, 1, c.Len())
}

func TestStateGraph_PruneOrphans(t *testing.T) {
	cfg := NewConfigGraph()
	cfg.Circuits.Upsert(CircuitConfig{ID: 1, Name: "Pool"})

	st := NewStateGraph()
	st.Circuits.Upsert(CircuitState{ID: 1, IsOn: true})
	st.Circuits.Upsert(CircuitState{ID: 99, IsOn: false})

	removed := st.PruneOrphans(cfg)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, st.Circuits.Len())
	_, ok := st.Circuits.Get(99)
	assert.False(t, ok)
}

func TestNormalizeScheduleTime(t *testing.T) {
	v, err := NormalizeScheduleTime("08:30")
	require.NoError(t, err)
	assert.Equal(t, "08:30", v)

	v, err = NormalizeScheduleTime("sunrise")
	require.NoError(t, err)
	assert.Equal(t, "sunrise", v)

	_, err = NormalizeScheduleTime("25:00")
	assert.Error(t, err)
}

func TestChemSetpointRange(t *testing.T) {
	r := DefaultChemSetpointRange()
	assert.NoError(t, r.ValidatePH(7.4))
	assert.Error(t, r.ValidatePH(9.0))
	assert.NoError(t, r.ValidateORP(650))
	assert.Error(t, r.ValidateORP(1000))
}
