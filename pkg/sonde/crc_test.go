package sonde

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC16CCITTCheckValue(t *testing.T) {
	// CRC-16 with poly 0x1021, init 0xFFFF, no reflect and no xorout over
	// the standard "123456789" check string yields 0x29B1 (the well-known
	// CRC-16/CCITT-FALSE check value).
	require.Equal(t, uint16(0x29B1), CRC16CCITT([]byte("123456789")))
}

func TestCRC16CCITTDetectsBitFlip(t *testing.T) {
	data := []byte{0x10, 0xB6, 0xCA, 0x11, 0x22, 0x96, 0x12, 0xF8}
	base := CRC16CCITT(data)
	for i := range data {
		flipped := append([]byte(nil), data...)
		flipped[i] ^= 0x01
		require.NotEqual(t, base, CRC16CCITT(flipped))
	}
}
