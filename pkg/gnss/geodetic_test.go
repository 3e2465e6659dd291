package gnss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestECEF2ElliRoundTrip(t *testing.T) {
	cases := []Geodetic{
		{Lat: 0, Lon: 0, Alt: 0},
		{Lat: 45, Lon: 90, Alt: 1000},
		{Lat: -33.8, Lon: 151.2, Alt: 40},
		{Lat: 89.9, Lon: -179.9, Alt: 50000},
		{Lat: -89.9, Lon: 179.9, Alt: -400},
	}
	for _, g := range cases {
		ecef := Elli2ECEF(g)
		back := ECEF2Elli(ecef)
		require.InDelta(t, g.Lat, back.Lat, 1e-9)
		require.InDelta(t, g.Lon, back.Lon, 1e-9)
		require.InDelta(t, g.Alt, back.Alt, 1e-6)
	}
}

func TestDistSymmetric(t *testing.T) {
	d1 := dist(0, 0, 0, 3, 4, 0)
	require.InDelta(t, 5.0, d1, 1e-9)
	d2 := dist(3, 4, 0, 0, 0, 0)
	require.InDelta(t, d1, d2, 1e-9)
}

func TestRotZPreservesRadius(t *testing.T) {
	x, y, z := rotZ(earthA, 0, 0, 0.5)
	r := math.Sqrt(x*x + y*y + z*z)
	require.InDelta(t, earthA, r, 1e-6)
}
