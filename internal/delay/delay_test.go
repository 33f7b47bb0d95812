package delay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GuardRunsImmediatelyWhenClear(t *testing.T) {
	m := NewManager()
	ran := false
	err := m.Guard("pump", 1, PurposeChangeCooldown, false, func() { ran = true })
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestManager_GuardQueuesWhileActive(t *testing.T) {
	m := NewManager()
	m.Start("pump", 1, PurposeChangeCooldown, 30*time.Millisecond)

	ran := false
	err := m.Guard("pump", 1, PurposeChangeCooldown, false, func() { ran = true })
	require.NoError(t, err)
	assert.False(t, ran, "op should be queued, not run immediately")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, ran, "op should have run once the cooldown cleared")
}

func TestManager_GuardImmediateFailsFast(t *testing.T) {
	m := NewManager()
	m.Start("heater", 1, PurposeHeaterCooldown, time.Second)

	err := m.Guard("heater", 1, PurposeHeaterCooldown, true, func() {
		t.Fatal("op must not run when immediate guard is blocked")
	})
	assert.Error(t, err)
}

func TestManager_Interlock(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.CheckInterlock("spa-heat"))

	m.SetInterlock("spa-heat")
	err := m.CheckInterlock("spa-heat")
	require.Error(t, err)

	m.ClearInterlock("spa-heat")
	assert.NoError(t, m.CheckInterlock("spa-heat"))
}
