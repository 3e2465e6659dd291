package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeHamming(data [4]byte) [8]byte {
	var code [8]byte
	copy(code[:4], data[:])
	for i := 0; i < 4; i++ {
		var p byte
		for j := 0; j < 8; j++ {
			p ^= hammingH[i][j] & code[j]
		}
		code[4+i] = p
	}
	return code
}

func TestHammingDecodeClean(t *testing.T) {
	code := encodeHamming([4]byte{1, 0, 1, 1})
	buf := code[:]
	ret := HammingDecode(buf)
	assert.Equal(t, 0, ret)
}

func TestHammingDecodeSingleBitError(t *testing.T) {
	for pos := 0; pos < 8; pos++ {
		code := encodeHamming([4]byte{0, 1, 1, 0})
		buf := append([]byte(nil), code[:]...)
		buf[pos] ^= 1
		ret := HammingDecode(buf)
		assert.NotEqual(t, -1, ret, "position %d", pos)
		assert.Equal(t, []byte{0, 1, 1, 0}, buf[:4])
	}
}

func TestDeinterleaveRoundTrip(t *testing.T) {
	const l = 7
	colMajor := make([]byte, 8*l)
	for i := range colMajor {
		colMajor[i] = byte(i % 2)
	}
	block := Deinterleave(colMajor, l)
	assert.Len(t, block, 8*l)
	// row i, col j of block corresponds to colMajor[l*j+i]
	for j := 0; j < 8; j++ {
		for i := 0; i < l; i++ {
			assert.Equal(t, colMajor[l*j+i], block[8*i+j])
		}
	}
}
