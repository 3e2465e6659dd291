package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sliceReader struct {
	samples []float64
	pos     int
}

func (r *sliceReader) NextSample() (float64, error) {
	if r.pos >= len(r.samples) {
		return 0, ErrEOF
	}
	x := r.samples[r.pos]
	r.pos++
	return x, nil
}

func TestReadBitHardDecision(t *testing.T) {
	// 5 samples/bit, bit=1 (positive), bit=0 (negative).
	samples := []float64{}
	for i := 0; i < 5; i++ {
		samples = append(samples, 0.8)
	}
	for i := 0; i < 5; i++ {
		samples = append(samples, -0.8)
	}

	r := &sliceReader{samples: samples}
	bs := NewBitSlicer(r, 5)

	bit, err := bs.ReadBit(1, true, false, 0)
	require.NoError(t, err)
	require.Equal(t, 1, bit)

	bit, err = bs.ReadBit(1, false, false, 0)
	require.NoError(t, err)
	require.Equal(t, 0, bit)
}

func TestReadBitEOF(t *testing.T) {
	r := &sliceReader{samples: []float64{0.1, 0.1}}
	bs := NewBitSlicer(r, 5)
	_, err := bs.ReadBit(1, true, false, 0)
	require.ErrorIs(t, err, ErrEOF)
}

func TestReadSoftBitClipsAndScales(t *testing.T) {
	samples := make([]float64, 10)
	for i := range samples {
		samples[i] = 5.0
	}
	r := &sliceReader{samples: samples}
	bs := NewBitSlicer(r, 5)
	soft, err := bs.ReadSoftBit(1, true, 1.0)
	require.NoError(t, err)
	require.InDelta(t, 2.5, soft, 1e-9)
}
