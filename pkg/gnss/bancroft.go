package gnss

import "math"

// EarthMeanRadius is used only to disambiguate the two Bancroft solutions:
// of the pair, the one whose ECEF position lies closer to this radius wins.
const EarthMeanRadius = 6371000.0

// lorentz is the Lorentzian inner product <a,b> = a0b0+a1b1+a2b2-a3b3 used
// throughout the Bancroft closed-form solution.
func lorentz(a, b [4]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] - a[3]*b[3]
}

// bancroftInverse computes the 4xN matrix BBB that NAV_bancroft1 and
// NAV_LinP/LinV both build from their Nx4 design matrix b: for N==4 a
// direct 4x4 inverse, otherwise the normal-equations pseudoinverse
// (B^T B)^-1 B^T.
func bancroftInverse(b [][4]float64) (bbb [][]float64, ok bool) {
	n := len(b)

	if n == 4 {
		var m [4][4]float64
		copy(m[:], b)
		inv, invOK := matrixInvert(m)
		if !invOK {
			return nil, false
		}
		bbb = make([][]float64, 4)
		for i := 0; i < 4; i++ {
			bbb[i] = make([]float64, 4)
			for j := 0; j < 4; j++ {
				bbb[i][j] = inv[i][j]
			}
		}
		return bbb, true
	}

	var btb [4][4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += b[k][i] * b[k][j]
			}
			btb[i][j] = sum
		}
	}

	btbInv, invOK := matrixInvert(btb)
	if !invOK {
		return nil, false
	}

	bbb = make([][]float64, 4)
	for i := 0; i < 4; i++ {
		bbb[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += btbInv[i][k] * b[j][k]
			}
			bbb[i][j] = sum
		}
	}
	return bbb, true
}

// Bancroft solves for receiver ECEF position and clock bias in closed form
// from N (4..12) pseudorange observations, per Bancroft's 1985 algorithm.
// It returns false when the problem is degenerate (too few/many satellites,
// a zero quadratic leading coefficient, or a negative discriminant).
func Bancroft(sats []Sat) (pos ECEF, clockBias float64, ok bool) {
	n := len(sats)
	if n < 4 || n > 12 {
		return ECEF{}, 0, false
	}

	b := make([][4]float64, n)
	for i, s := range sats {
		x, y, z := rotZ(s.X, s.Y, s.Z, EarthRotationRate*RangeEstimate)
		b[i] = [4]float64{x, y, z, s.Pseudorange + s.ClockCorr}
	}

	bbb, invOK := bancroftInverse(b)
	if !invOK {
		return ECEF{}, 0, false
	}

	var be [4]float64
	for i := 0; i < 4; i++ {
		for k := 0; k < n; k++ {
			be[i] += bbb[i][k] * 1.0
		}
	}

	a := make([]float64, n)
	for i := range a {
		a[i] = 0.5 * lorentz(b[i], b[i])
	}

	var ba [4]float64
	for i := 0; i < 4; i++ {
		for k := 0; k < n; k++ {
			ba[i] += bbb[i][k] * a[k]
		}
	}

	q2 := lorentz(be, be)
	q1 := lorentz(ba, be) - 1
	q0 := lorentz(ba, ba)

	if q2 == 0 {
		return ECEF{}, 0, false
	}

	p := q1 / q2
	q := q0 / q2

	sq := p*p - q
	if sq < 0 {
		return ECEF{}, 0, false
	}

	x1 := -p + math.Sqrt(sq)
	x2 := -p - math.Sqrt(sq)

	var sol1, sol2 [4]float64
	for i := 0; i < 4; i++ {
		sol1[i] = x1*be[i] + ba[i]
		sol2[i] = x2*be[i] + ba[i]
	}
	sol1[3] = -sol1[3]
	sol2[3] = -sol2[3]

	r1 := math.Sqrt(sol1[0]*sol1[0] + sol1[1]*sol1[1] + sol1[2]*sol1[2])
	r2 := math.Sqrt(sol2[0]*sol2[0] + sol2[1]*sol2[1] + sol2[2]*sol2[2])

	if math.Abs(r1-EarthMeanRadius) < math.Abs(r2-EarthMeanRadius) {
		return ECEF{X: sol1[0], Y: sol1[1], Z: sol1[2]}, sol1[3], true
	}
	return ECEF{X: sol2[0], Y: sol2[1], Z: sol2[2]}, sol2[3], true
}
