package gnss

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// preRotate inverts the Sagnac rotation Bancroft applies internally
// (rotZ(·, EarthRotationRate*RangeEstimate)) so a synthetic satellite
// position supplied here lands exactly on target after the solver's own
// correction -- letting a noise-free test vector check the solver to
// float64 precision instead of to within one rotation's worth of arc.
// LinearizePosition rotates by each satellite's range/LightSpeed instead,
// which fourSatGeometry keeps within 0.2 ms of RangeEstimate.
func preRotate(target ECEF) ECEF {
	theta := EarthRotationRate * RangeEstimate
	x, y, z := rotZ(target.X, target.Y, target.Z, -theta)
	return ECEF{X: x, Y: y, Z: z}
}

// fourSatGeometry returns four GPS-like satellites in well-separated
// directions around a receiver near the WGS84 surface, each carrying a
// noise-free pseudorange (geometric range only, zero clock bias). The
// ranges sit close to LightSpeed*RangeEstimate but differ from one
// another: equal ranges would give both Bancroft roots the same position
// and leave the clock bias undetermined.
func fourSatGeometry(receiver ECEF) []Sat {
	nominal := LightSpeed * RangeEstimate
	ranges := [4]float64{nominal, nominal + 20000, nominal + 40000, nominal + 60000}
	dirs := [4][3]float64{
		{1, 0, 0.3},
		{-0.6, 0.8, 0.4},
		{-0.3, -0.9, 0.2},
		{0.2, 0.3, -0.9},
	}
	sats := make([]Sat, 4)
	for i, d := range dirs {
		norm := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
		target := ECEF{
			X: receiver.X + d[0]/norm*ranges[i],
			Y: receiver.Y + d[1]/norm*ranges[i],
			Z: receiver.Z + d[2]/norm*ranges[i],
		}
		pos := preRotate(target)
		pr := dist(receiver.X, receiver.Y, receiver.Z, target.X, target.Y, target.Z)
		sats[i] = Sat{X: pos.X, Y: pos.Y, Z: pos.Z, Pseudorange: pr}
	}
	return sats
}

func TestBancroftRecoversKnownPosition(t *testing.T) {
	receiver := Elli2ECEF(Geodetic{Lat: 40, Lon: -105, Alt: 1650})
	sats := fourSatGeometry(receiver)

	pos, clockBias, ok := Bancroft(sats)
	require.True(t, ok)

	d := dist(pos.X, pos.Y, pos.Z, receiver.X, receiver.Y, receiver.Z)
	require.Less(t, d, 0.001, "bancroft position error should be sub-millimeter")
	require.Less(t, math.Abs(clockBias), 0.001, "zero-bias fix should recover near-zero clock bias")
}

func TestSolveConvergesOnNoiseFreeGeometry(t *testing.T) {
	receiver := Elli2ECEF(Geodetic{Lat: -12, Lon: 45, Alt: 300})
	sats := fourSatGeometry(receiver)

	fix, ok := Solve(sats, DefaultSolverConfig())
	require.True(t, ok)

	d := dist(fix.Pos.X, fix.Pos.Y, fix.Pos.Z, receiver.X, receiver.Y, receiver.Z)
	require.Less(t, d, 1.0)
	require.Equal(t, 4, fix.NumSats)
}
