package pentair16

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := NewPacket(0x00, 0x10, 0x20, 0x86, []byte{0x06, 0x01})
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
	assert.Equal(t, p.Src, got.Src)
	assert.Equal(t, p.Action, got.Action)
	assert.Equal(t, p.Payload, got.Payload)
}

func TestDecoder_ChecksumResync(t *testing.T) {
	good := NewPacket(0x00, 0x10, 0x20, 0x86, []byte{0x06, 0x01})
	goodBytes, err := Encode(good)
	require.NoError(t, err)

	// A frame with the same header/envelope but a corrupted checksum,
	// followed immediately by a valid frame.
	bad := append([]byte(nil), goodBytes...)
	bad[len(bad)-1] ^= 0xFF

	stream := append(bad, goodBytes...)

	d := NewDecoder()
	var packets []*Packet
	var errs int
	for _, b := range stream {
		pkt, decErr := d.DecodeByte(b)
		if decErr != nil {
			errs++
		}
		if pkt != nil {
			packets = append(packets, pkt)
		}
	}

	assert.GreaterOrEqual(t, errs, 1, "expected at least one checksum error")
	require.Len(t, packets, 1, "the valid trailing frame must still decode")
	assert.Equal(t, good.Payload, packets[0].Payload)
}

func TestDecoder_RejectsOversizedLength(t *testing.T) {
	d := NewDecoder()
	stream := []byte{PreambleByte0, PreambleByte1, PreambleByte2, HeaderByte, 0x00, 0x10, 0x20, 0x86, 0xFF}
	var sawErr bool
	for _, b := range stream {
		_, err := d.DecodeByte(b)
		if err != nil {
			sawErr = true
		}
	}
	assert.True(t, sawErr)
}

func TestEncode_RejectsOversizedPayload(t *testing.T) {
	p := NewPacket(0x00, 0x10, 0x20, 0x86, make([]byte, MaxPayloadSize+1))
	_, err := Encode(p)
	assert.Error(t, err)
}
