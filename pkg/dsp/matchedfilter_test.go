package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildReferenceUnitNorm(t *testing.T) {
	headers := []string{
		"0000100001101101010100111000100001000100011010010100100000011111", // RS41
		"10011010100110010101101001010101",                                 // DFM
		"10011001100110010100110010011001",                                 // M10
	}
	shapes := []PulseShape{ShapeRect, ShapeTriangular, ShapeGaussian, ShapeRaisedLinear}

	for _, h := range headers {
		for _, shape := range shapes {
			match := BuildReference(h, 5, shape)
			var ss float64
			for _, v := range match {
				ss += v * v
			}
			require.InDelta(t, 1.0, ss, 1e-6)
		}
	}
}
