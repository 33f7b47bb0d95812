package intellitouch

import (
	"testing"
	"time"

	"github.com/pentacore/bridge/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_EncodeSetCircuitState(t *testing.T) {
	c := New()
	msg, err := c.EncodeSetCircuitState(6, true)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Frame)
	assert.Equal(t, addrController, msg.ExpectedPeer)
	assert.Equal(t, actionCircuitSetAck, msg.ExpectedAction)
}

func TestCodec_EncodeSetLightTheme_UnknownTheme(t *testing.T) {
	c := New()
	_, err := c.EncodeSetLightTheme(3, "not-a-theme")
	require.Error(t, err)
}

func TestCodec_EncodeSetClock(t *testing.T) {
	c := New()
	msg, err := c.EncodeSetClock(board.ClockPayload{At: time.Date(2026, 8, 6, 12, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Frame)
}

func TestCodec_EncodeSetCoolSetpoint_Unsupported(t *testing.T) {
	c := New()
	_, err := c.EncodeSetCoolSetpoint(0, 80)
	require.Error(t, err)
}
