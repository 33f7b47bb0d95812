package cli

import (
	"testing"

	"github.com/pentacore/bridge/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec_ResolvesEachSupportedVariant(t *testing.T) {
	cases := []struct {
		ctrlType string
		want     board.ControllerType
	}{
		{"IntelliTouch", board.IntelliTouch},
		{"EasyTouch", board.EasyTouch},
		{"SunTouch", board.SunTouch},
		{"IntelliCom", board.IntelliCom},
		{"IntelliCenter", board.IntelliCenter},
		{"AquaLink", board.AquaLink},
	}
	for _, tc := range cases {
		ct, codec, decoder, err := newCodec(tc.ctrlType)
		require.NoError(t, err, tc.ctrlType)
		assert.Equal(t, tc.want, ct)
		assert.NotNil(t, codec)
		assert.NotNil(t, decoder)
	}
}

func TestNewCodec_RejectsUnknownAndStandalone(t *testing.T) {
	_, _, _, err := newCodec("Standalone")
	assert.Error(t, err)

	_, _, _, err = newCodec("NoSuchController")
	assert.Error(t, err)
}

func TestHeatRangeFor_ReturnsUsableRange(t *testing.T) {
	lookup := heatRangeFor(board.IntelliTouch)
	r, err := lookup(0)
	require.NoError(t, err)
	assert.NoError(t, r.Validate(80))
	assert.Error(t, r.Validate(200))
}
