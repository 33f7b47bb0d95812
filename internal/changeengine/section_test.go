package changeengine

import (
	"testing"

	"github.com/pentacore/bridge/internal/bridgeerr"
	"github.com/pentacore/bridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSection_SingleEntityByID(t *testing.T) {
	e := newTestEngine(t)
	e.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]Event, Root) {
		cfg.Circuits.Upsert(model.CircuitConfig{ID: 6, Name: "Pool"})
		st.Circuits.Upsert(model.CircuitState{ID: 6, IsOn: true})
		return nil, RootConfig | RootState
	})

	got, err := e.GetSection("circuits/6")
	require.NoError(t, err)
	item, ok := got.(SectionItem[model.CircuitConfig, model.CircuitState])
	require.True(t, ok)
	assert.Equal(t, "Pool", item.Config.Name)
	assert.True(t, item.State.IsOn)
}

func TestGetSection_WholeCollection(t *testing.T) {
	e := newTestEngine(t)
	e.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]Event, Root) {
		cfg.Bodies.Upsert(model.BodyConfig{ID: 1, Name: "Pool"})
		cfg.Bodies.Upsert(model.BodyConfig{ID: 2, Name: "Spa"})
		return nil, RootConfig
	})

	got, err := e.GetSection("bodies")
	require.NoError(t, err)
	items, ok := got.([]SectionItem[model.BodyConfig, model.BodyState])
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "Pool", items[0].Config.Name)
	assert.Equal(t, "Spa", items[1].Config.Name)
}

func TestGetSection_UnknownIDReturnsEquipmentNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetSection("circuits/999")
	require.Error(t, err)
	var notFound *bridgeerr.EquipmentNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGetSection_UnknownSectionErrors(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.GetSection("gizmos")
	assert.Error(t, err)
}

func TestGetSection_Equipment(t *testing.T) {
	e := newTestEngine(t)
	e.Commit(func(cfg *model.ConfigGraph, st *model.StateGraph) ([]Event, Root) {
		cfg.Equipment = model.EquipmentConfig{Model: "IC-40"}
		return nil, RootConfig
	})

	got, err := e.GetSection("equipment")
	require.NoError(t, err)
	item, ok := got.(SectionItem[model.EquipmentConfig, model.EquipmentState])
	require.True(t, ok)
	assert.Equal(t, "IC-40", item.Config.Model)
}
