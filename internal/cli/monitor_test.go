package cli

import (
	"testing"

	"github.com/pentacore/bridge/internal/changeengine"
	"github.com/pentacore/bridge/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestStateDesc(t *testing.T) {
	assert.Equal(t, "on", stateDesc(model.CircuitState{IsOn: true}))
	assert.Equal(t, "off", stateDesc(model.CircuitState{IsOn: false}))
}

func TestFormatEvent(t *testing.T) {
	ev := changeengine.Event{Kind: changeengine.KindCircuit, ID: 6}
	assert.Contains(t, formatEvent(ev), "circuit")
	assert.Contains(t, formatEvent(ev), "#6")
}

func TestTail(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"c", "d"}, tail(lines, 2))
	assert.Equal(t, lines, tail(lines, 10))
}
