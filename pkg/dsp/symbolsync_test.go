package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// synthesize builds a sample stream of silence with one embedded copy of
// the matched-filter reference starting at sampleOffset.
func synthesize(match []float64, total, offset int) []float64 {
	out := make([]float64, total)
	for i, v := range match {
		if offset+i < total {
			out[offset+i] = v
		}
	}
	return out
}

func TestGetMaxCorrFindsEmbeddedHeader(t *testing.T) {
	match := BuildReference("110010110", 4, ShapeRect)
	// The correlation ring keeps 2*len(match) values, so the header sits
	// near the end of the stream and the window spans one header length.
	samples := synthesize(match, 2000, 1940)

	ss := New(match, 4)
	for _, x := range samples {
		ss.PushSample(x)
	}

	peak, ok := ss.GetMaxCorr(9, 4)
	require.True(t, ok)
	require.Greater(t, peak.Value, 0.5)
}

func TestGetMaxCorrNeverReturnsBoundary(t *testing.T) {
	match := BuildReference("1100101101001", 4, ShapeRect)
	samples := synthesize(match, 3000, 1200)

	ss := New(match, 4)
	for _, x := range samples {
		ss.PushSample(x)
	}

	peak, ok := ss.GetMaxCorr(150, 4)
	require.True(t, ok)

	out := ss.SampleOut()
	span := int64(float64(150) * 4)
	lo := out - span
	hi := out - 1
	require.NotEqual(t, lo, peak.Pos)
	require.NotEqual(t, hi, peak.Pos)
}

func TestVarianceIncremental(t *testing.T) {
	match := BuildReference("1010", 4, ShapeRect)
	ss := New(match, 4)
	for i := 0; i < 500; i++ {
		x := 0.1
		if i%2 == 0 {
			x = -0.1
		}
		ss.PushSample(x)
	}
	_, v := ss.Variance()
	require.InDelta(t, 0.01, v, 1e-6)
}
