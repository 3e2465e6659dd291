package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRS255RoundTrip(t *testing.T) {
	rs := NewRS255()
	cw := make([]byte, 255)
	for i := 24; i < 255; i++ {
		cw[i] = byte(i * 7 % 251)
	}
	require.NoError(t, rs.Encode(cw))

	corrupted := append([]byte(nil), cw...)
	corr, n := rs.Decode(corrupted)
	assert.Equal(t, 0, n)
	assert.Nil(t, corr)
	assert.Equal(t, cw, corrupted)
}

func TestRS255ErrorCorrection(t *testing.T) {
	rs := NewRS255()
	cw := make([]byte, 255)
	for i := 24; i < 255; i++ {
		cw[i] = byte(i*13 + 3)
	}
	require.NoError(t, rs.Encode(cw))

	corrupted := append([]byte(nil), cw...)
	flips := []int{5, 40, 80, 120, 200, 230, 7, 60}
	for _, pos := range flips {
		corrupted[pos] ^= 0xFF
	}
	_, n := rs.Decode(corrupted)
	assert.Equal(t, len(flips), n)
	assert.Equal(t, cw, corrupted)
}

func TestRS255CCSDSRoundTrip(t *testing.T) {
	rs := NewRS255CCSDS()
	cw := make([]byte, 255)
	for i := 32; i < 255; i++ {
		cw[i] = byte(i * 3 % 211)
	}
	require.NoError(t, rs.Encode(cw))
	corrupted := append([]byte(nil), cw...)
	corrupted[10] ^= 0x11
	corrupted[200] ^= 0x55
	_, n := rs.Decode(corrupted)
	assert.Equal(t, 2, n)
	assert.Equal(t, cw, corrupted)
}

func TestRS255UncorrectableReportsNegative(t *testing.T) {
	rs := NewRS255()
	cw := make([]byte, 255)
	for i := 24; i < 255; i++ {
		cw[i] = byte(i)
	}
	require.NoError(t, rs.Encode(cw))
	corrupted := append([]byte(nil), cw...)
	for i := 0; i < 200; i += 2 {
		corrupted[i] ^= 0x01
	}
	_, n := rs.Decode(corrupted)
	assert.Less(t, n, 0)
}
