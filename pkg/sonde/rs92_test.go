package sonde

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnpackPRNBitsExtractsSimplePRN(t *testing.T) {
	// PRN 5 = 0b00101 in the first 5-bit slot, low bit first.
	block := make([]byte, 8)
	block[0] = 0b00000101
	bits := unpackPRNBits(block)
	require.Equal(t, []byte{1, 0, 1, 0, 0}, bits[0:5])
}

func TestRS92PRN12PlainSlotsNoOverflow(t *testing.T) {
	bits := [64]byte{}
	// slot 0 carries PRN 3 (0b00011).
	bits[0], bits[1] = 1, 1
	status := [12]byte{0x0F}
	prns, indPRN32 := rs92PRN12(bits, status)
	require.Equal(t, 3, prns[0])
	require.Equal(t, 12, indPRN32, "no slot should be flagged as PRN-32 overflow")
}

func TestRS92PRN12FlagsOverflowSlot(t *testing.T) {
	bits := [64]byte{}
	// slot 0: all-zero PRN field but a live status and the borrowed
	// overflow bit (slot 1's first bit) set.
	status := [12]byte{0x0F, 0x0F}
	bits[5] = 1 // bits[5*(0+1)]
	prns, indPRN32 := rs92PRN12(bits, status)
	require.Equal(t, 32, prns[0])
	require.Equal(t, 0, indPRN32)
}

func TestRS92InvalidChipPattern(t *testing.T) {
	require.True(t, rs92InvalidChipPattern(0x7FFFFFFF))
	require.True(t, rs92InvalidChipPattern(0x55555555))
	require.True(t, rs92InvalidChipPattern(0x20000000))
	require.False(t, rs92InvalidChipPattern(0x01400000))
}

func TestParseMeasurementsRejectsShortFrame(t *testing.T) {
	d := NewRS92Decoder()
	require.Nil(t, d.ParseMeasurements(make([]byte, 10)))
}

func TestParseRS92HandlesShortFrame(t *testing.T) {
	d := NewRS92Decoder()
	out := d.ParseRS92(make([]byte, 5), 0)
	require.Equal(t, NameRS92, out.Sonde)
}

func TestParseRS92ReadsFrameNbAndSerial(t *testing.T) {
	d := NewRS92Decoder()
	frame := make([]byte, rs92PosAuxData+4)
	frame[rs92PosFrameNb] = 0x2A
	frame[rs92PosFrameNb+1] = 0x00
	copy(frame[rs92PosSondeID:], "P1234567")
	out := d.ParseRS92(frame, 0)
	require.Equal(t, 0x2A, out.FrameNb)
	require.Equal(t, "P1234567", out.SerialNo)
	require.Equal(t, NameRS92, out.Sonde)
}

func TestDescrambleNGPIsInvolutary(t *testing.T) {
	key := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	orig := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x11, 0x22, 0x33}
	frame := append([]byte(nil), orig...)
	DescrambleNGP(frame, key)
	DescrambleNGP(frame, key)
	require.Equal(t, orig, frame)
}
