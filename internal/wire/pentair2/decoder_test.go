package pentair2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := NewPacket(0x10, 0x20, 0x82, []byte{0x01, 0x02, 0x03})
	wireBytes, err := Encode(p)
	require.NoError(t, err)

	d := NewDecoder()
	var got *Packet
	for _, b := range wireBytes {
		pkt, decErr := d.DecodeByte(b)
		require.NoError(t, decErr)
		if pkt != nil {
			got = pkt
		}
	}

	require.NotNil(t, got)
	assert.Equal(t, p.Dest, got.Dest)
	assert.Equal(t, p.Action, got.Action)
	assert.Equal(t, p.Payload, got.Payload)
}

func TestDecoder_ChecksumResync(t *testing.T) {
	good := NewPacket(0x10, 0x20, 0x82, []byte{0x01})
	goodBytes, err := Encode(good)
	require.NoError(t, err)

	bad := append([]byte(nil), goodBytes...)
	bad[len(bad)-1] ^= 0xFF

	stream := append(bad, goodBytes...)

	d := NewDecoder()
	var packets []*Packet
	for _, b := range stream {
		pkt, _ := d.DecodeByte(b)
		if pkt != nil {
			packets = append(packets, pkt)
		}
	}
	require.Len(t, packets, 1)
	assert.Equal(t, good.Payload, packets[0].Payload)
}
