package gnss

import "math"

// DOP holds dilution-of-precision terms: the position (G/P) term and the
// three spatial variance terms the line-of-sight geometry matrix yields.
type DOP struct {
	GDOP float64 // overall geometric DOP
	X, Y, Z float64
}

// CalcDOP computes geometric dilution of precision for a receiver position
// against a set of satellites, from the unit line-of-sight matrix (each row
// [ux, uy, uz, 1]) and its normal-equations inverse trace.
func CalcDOP(sats []Sat, posECEF ECEF) (DOP, bool) {
	n := len(sats)
	var ata [4][4]float64

	unit := make([][4]float64, n)
	for i, s := range sats {
		dx, dy, dz := s.X-posECEF.X, s.Y-posECEF.Y, s.Z-posECEF.Z
		norm := math.Sqrt(dx*dx + dy*dy + dz*dz)
		unit[i] = [4]float64{dx / norm, dy / norm, dz / norm, 1}
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += unit[k][i] * unit[k][j]
			}
			ata[i][j] = sum
		}
	}

	diag, ok := traceInvert(ata)
	if !ok {
		return DOP{}, false
	}

	return DOP{
		X:    math.Sqrt(math.Abs(diag[0])),
		Y:    math.Sqrt(math.Abs(diag[1])),
		Z:    math.Sqrt(math.Abs(diag[2])),
		GDOP: math.Sqrt(math.Abs(diag[0]) + math.Abs(diag[1]) + math.Abs(diag[2]) + math.Abs(diag[3])),
	}, true
}
