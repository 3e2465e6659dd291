package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBCH64RoundTrip(t *testing.T) {
	b := NewBCH64()
	cw := make([]byte, bchN)
	for i := 12; i < bchN; i++ {
		cw[i] = byte((i * 5) % 2)
	}
	b.Encode(cw)

	corrupted := append([]byte(nil), cw...)
	corr, n := b.DecodeGF2T2(corrupted)
	assert.Equal(t, 0, n)
	assert.Nil(t, corr)
	assert.Equal(t, cw, corrupted)
}

func TestBCH64TwoErrorCorrection(t *testing.T) {
	b := NewBCH64()
	cw := make([]byte, bchN)
	for i := 12; i < bchN; i++ {
		cw[i] = byte((i * 3) % 2)
	}
	b.Encode(cw)

	corrupted := append([]byte(nil), cw...)
	corrupted[5] ^= 1
	corrupted[40] ^= 1

	_, n := b.DecodeGF2T2(corrupted)
	require.Equal(t, 2, n)
	assert.Equal(t, cw, corrupted)
}

// TestBCH64ClosedFormAgreesWithEuclid exercises every 2-error pattern on a
// fixed codeword and checks the decoder never reports the closed-form /
// Euclid disagreement sentinel (-2) for a genuine 2-error pattern.
func TestBCH64ClosedFormAgreesWithEuclid(t *testing.T) {
	b := NewBCH64()
	base := make([]byte, bchN)
	for i := 12; i < bchN; i++ {
		base[i] = byte((i * 7) % 2)
	}
	b.Encode(base)

	for i := 0; i < bchN; i++ {
		for j := i + 1; j < bchN; j++ {
			corrupted := append([]byte(nil), base...)
			corrupted[i] ^= 1
			corrupted[j] ^= 1
			_, n := b.DecodeGF2T2(corrupted)
			assert.NotEqual(t, -2, n, "pattern (%d,%d) reported Euclid/closed-form disagreement", i, j)
		}
	}
}
