package sonde

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnpackBitsMSBRoundTrip(t *testing.T) {
	in := []byte{0xA5, 0x3C}
	bits := unpackBitsMSB(in)
	require.Len(t, bits, 16)
	require.Equal(t, []byte{1, 0, 1, 0, 0, 1, 0, 1}, bits[:8])
}

func TestUnpackBitsLSBRoundTrip(t *testing.T) {
	in := []byte{0x01}
	bits := unpackBitsLSB(in)
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, bits)
}

func TestParseDFMHandlesShortFrame(t *testing.T) {
	d := NewDFMDecoder()
	out := d.ParseDFM(make([]byte, 5), 0)
	require.Equal(t, NameDFM, out.Sonde)
}
