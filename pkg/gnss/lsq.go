package gnss

import "math"

// LinearizePosition refines an ECEF position estimate by one
// Gauss-Newton step against N (4..12) pseudorange observations: it builds
// a unit line-of-sight design matrix, Sagnac-corrects each satellite
// position for the (estimated) signal transit time, and solves the
// linearized normal equations for a position and clock-bias delta.
func LinearizePosition(sats []Sat, posECEF ECEF, dt float64) (dPos ECEF, dClock float64, ok bool) {
	n := len(sats)
	if n < 4 || n > 12 {
		return ECEF{}, 0, false
	}

	b := make([][4]float64, n)
	norm := make([]float64, n)

	for i, s := range sats {
		r := dist(posECEF.X, posECEF.Y, posECEF.Z, s.X, s.Y, s.Z) / LightSpeed
		if r < 0.06 || r > 0.1 {
			r = RangeEstimate
		}
		x, y, z := rotZ(s.X, s.Y, s.Z, EarthRotationRate*r)

		dx, dy, dz := x-posECEF.X, y-posECEF.Y, z-posECEF.Z
		norm[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)

		b[i] = [4]float64{dx / norm[i], dy / norm[i], dz / norm[i], 1}
	}

	binv, invOK := bancroftInverse(b)
	if !invOK {
		return ECEF{}, 0, false
	}

	a := make([]float64, n)
	for i, s := range sats {
		obsRange := s.Pseudorange + s.ClockCorr
		proxRange := norm[i] - dt
		a[i] = proxRange - obsRange
	}

	var ba [4]float64
	for i := 0; i < 4; i++ {
		for k := 0; k < n; k++ {
			ba[i] += binv[i][k] * a[k]
		}
	}

	return ECEF{X: ba[0], Y: ba[1], Z: ba[2]}, ba[3], true
}

// LinearizeVelocity refines an ECEF velocity estimate by one Gauss-Newton
// step against N (4..12) Doppler observations: it reuses the position
// solution's line-of-sight geometry (built at the fixed RangeEstimate
// transit time rather than per-satellite range) and solves for a
// velocity and clock-drift delta.
func LinearizeVelocity(sats []Sat, posECEF ECEF, velECEF ECEF, dt float64) (dVel ECEF, dClock float64, ok bool) {
	n := len(sats)
	if n < 4 || n > 12 {
		return ECEF{}, 0, false
	}

	b := make([][4]float64, n)
	norm := make([]float64, n)

	for i, s := range sats {
		x, y, z := rotZ(s.X, s.Y, s.Z, EarthRotationRate*RangeEstimate)

		dx, dy, dz := x-posECEF.X, y-posECEF.Y, z-posECEF.Z
		norm[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)

		b[i] = [4]float64{dx / norm[i], dy / norm[i], dz / norm[i], 1}
	}

	binv, invOK := bancroftInverse(b)
	if !invOK {
		return ECEF{}, 0, false
	}

	a := make([]float64, n)
	for i, s := range sats {
		vProj := b[i][0]*(s.VX-velECEF.X) + b[i][1]*(s.VY-velECEF.Y) + b[i][2]*(s.VZ-velECEF.Z)
		obsRate := s.PseudoRate
		proxRate := vProj - dt
		a[i] = proxRate - obsRate
	}

	var ba [4]float64
	for i := 0; i < 4; i++ {
		for k := 0; k < n; k++ {
			ba[i] += binv[i][k] * a[k]
		}
	}

	return ECEF{X: ba[0], Y: ba[1], Z: ba[2]}, ba[3], true
}
