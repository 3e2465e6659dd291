package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViterbiHardRecoversWithBitFlips(t *testing.T) {
	v := NewViterbi()
	msg := []byte{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1}
	coded := v.Encode(msg)

	corrupted := append([]byte(nil), coded...)
	for _, pos := range []int{3, 10, 17, 24} {
		corrupted[pos] ^= 1
	}

	decoded := v.DecodeHard(corrupted)
	assert.GreaterOrEqual(t, len(decoded), len(msg))
	assert.Equal(t, msg, decoded[:len(msg)])
}

func TestViterbiSoftRecoversWithNoise(t *testing.T) {
	v := NewViterbi()
	msg := []byte{0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 0}
	coded := v.Encode(msg)

	soft := make([]float64, len(coded))
	for i, b := range coded {
		if b == 1 {
			soft[i] = 1.0
		} else {
			soft[i] = -1.0
		}
	}
	// perturb a handful of symbols without flipping their sign
	for _, pos := range []int{2, 9, 16, 23} {
		soft[pos] *= 0.3
	}

	decoded := v.DecodeSoft(soft)
	assert.Equal(t, msg, decoded[:len(msg)])
}
