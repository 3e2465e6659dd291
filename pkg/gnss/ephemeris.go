package gnss

import "math"

// GravityConstant is the WGS84 earth gravitational constant, m^3/s^2.
const GravityConstant = 3.986005e14

// RelativisticClockCorrection is the combined IS-GPS-200 relativistic clock
// correction constant, s per sqrt(m).
const RelativisticClockCorrection = -4.442807633e-10

// Ephemeris holds one satellite's broadcast (RINEX navigation) or almanac
// Keplerian orbital elements.
type Ephemeris struct {
	PRN      int
	Week     int
	Toe      float64
	Toc      float64
	Ecc      float64
	DeltaN   float64
	I0       float64
	OmegaDot float64
	Sqrta    float64
	Omega0   float64
	W        float64
	M0       float64
	Tgd      float64
	Idot     float64
	Cuc, Cus float64
	Crc, Crs float64
	Cic, Cis float64
	Af0, Af1, Af2 float64
}

// Sat is a satellite observation paired with its computed transmit-time
// state, the unit the Bancroft and least-squares solvers consume.
type Sat struct {
	PRN          int
	Pseudorange  float64 // meters
	PseudoRate   float64 // m/s, Doppler-derived range rate
	ClockCorr    float64 // meters
	ClockDrift   float64 // m/s
	X, Y, Z      float64 // ECEF position at signal transmission, meters
	VX, VY, VZ   float64 // ECEF velocity, m/s
	PR           float64 // raw pseudorange before clock correction, meters
	Status       byte
}

// keplerE solves Kepler's equation M = E - e*sin(E) for the eccentric
// anomaly by fixed-point iteration, matching the fixed 7-step
// loop (adequate since GPS orbit eccentricities are small).
func keplerE(m, ecc float64) float64 {
	e := m
	for j := 0; j < 7; j++ {
		e = m + ecc*math.Sin(e)
	}
	return e
}

// SatClockCorrection computes a satellite's clock bias and drift (in
// meters and m/s) at the given transmission GPS week/time-of-week, per
// IS-GPS-200's broadcast clock model plus the relativistic correction term.
func SatClockCorrection(txWeek int, txTow float64, eph Ephemeris) (corr, drift float64) {
	tot := float64(txWeek)*secondsInWeek + txTow
	tc := tot - (float64(eph.Week)*secondsInWeek + eph.Toc)

	a := eph.Sqrta * eph.Sqrta
	n := math.Sqrt(GravityConstant/(a*a*a)) + eph.DeltaN

	tk := tot - (float64(eph.Week)*secondsInWeek + eph.Toe)
	m := eph.M0 + n*tk
	e := keplerE(m, eph.Ecc)

	dTr := RelativisticClockCorrection * eph.Ecc * eph.Sqrta * math.Sin(e) * LightSpeed

	dTsv := eph.Af0 + eph.Af1*tc + eph.Af2*tc*tc - eph.Tgd

	corr = dTsv*LightSpeed + dTr
	drift = (eph.Af1 + 2.0*eph.Af2*tc) * LightSpeed
	return corr, drift
}

// SatPositionVelocity computes a satellite's ECEF position and velocity at
// the given transmission GPS week/time-of-week from its broadcast
// ephemeris, following the standard Keplerian orbit propagation with
// second-harmonic perturbation corrections.
func SatPositionVelocity(txWeek int, txTow float64, eph Ephemeris) (pos, vel [3]float64) {
	tot := float64(txWeek)*secondsInWeek + txTow
	tk := tot - (float64(eph.Week)*secondsInWeek + eph.Toe)

	a := eph.Sqrta * eph.Sqrta
	n := math.Sqrt(GravityConstant/(a*a*a)) + eph.DeltaN

	m := eph.M0 + n*tk
	e := keplerE(m, eph.Ecc)
	cosE, sinE := math.Cos(e), math.Sin(e)

	v := math.Atan2(math.Sqrt(1.0-eph.Ecc*eph.Ecc)*sinE, cosE-eph.Ecc)
	u := v + eph.W
	r := a * (1.0 - eph.Ecc*cosE)
	incl := eph.I0

	cos2u, sin2u := math.Cos(2.0*u), math.Sin(2.0*u)
	dU := eph.Cuc*cos2u + eph.Cus*sin2u
	dR := eph.Crc*cos2u + eph.Crs*sin2u
	dI := eph.Cic*cos2u + eph.Cis*sin2u

	u += dU
	r += dR
	incl += dI + eph.Idot*tk

	cosu, sinu := math.Cos(u), math.Sin(u)
	xOp, yOp := r*cosu, r*sinu

	omegaK := eph.Omega0 + eph.OmegaDot*tk - EarthRotationRate*(tk+eph.Toe)
	cosOmegaK, sinOmegaK := math.Cos(omegaK), math.Sin(omegaK)
	cosI, sinI := math.Cos(incl), math.Sin(incl)

	pos[0] = xOp*cosOmegaK - yOp*sinOmegaK*cosI
	pos[1] = xOp*sinOmegaK + yOp*cosOmegaK*cosI
	pos[2] = yOp * sinI

	edot := n / (1.0 - eph.Ecc*cosE)
	vdot := sinE * edot * (1.0 + eph.Ecc*math.Cos(v)) / (math.Sin(v) * (1.0 - eph.Ecc*cosE))
	udot := vdot + 2.0*(eph.Cus*cos2u-eph.Cuc*sin2u)*vdot
	rdot := a*eph.Ecc*sinE*n/(1.0-eph.Ecc*cosE) + 2.0*(eph.Crs*cos2u-eph.Crc*sin2u)*vdot
	idotdot := eph.Idot + (eph.Cis*cos2u-eph.Cic*sin2u)*2.0*vdot

	vxOp := rdot*cosu - yOp*udot
	vyOp := rdot*sinu + xOp*udot

	omegaDotK := eph.OmegaDot - EarthRotationRate

	tmpA := vxOp - yOp*cosI*omegaDotK
	tmpB := xOp*omegaDotK + vyOp*cosI - yOp*sinI*idotdot

	vel[0] = tmpA*cosOmegaK - tmpB*sinOmegaK
	vel[1] = tmpA*sinOmegaK + tmpB*cosOmegaK
	vel[2] = vyOp*sinI + yOp*cosI*idotdot

	return pos, vel
}

// SatelliteState resolves a Sat's transmit-time ECEF position, velocity,
// and clock correction from its ephemeris and the nominal transmission
// GPS week/time-of-week, iterating the week/tow rollover the way the
// reference clock-correction step does.
func SatelliteState(week int, tow float64, eph Ephemeris) Sat {
	corr, drift := SatClockCorrection(week, tow, eph)

	adjWeek := week
	adjTow := tow + corr/LightSpeed
	if adjTow < 0.0 {
		adjTow += secondsInWeek
		adjWeek--
	}
	if adjTow > secondsInWeek {
		adjTow -= secondsInWeek
		adjWeek++
	}

	pos, vel := SatPositionVelocity(adjWeek, adjTow, eph)

	return Sat{
		PRN:        eph.PRN,
		ClockCorr:  corr,
		ClockDrift: drift,
		X:          pos[0],
		Y:          pos[1],
		Z:          pos[2],
		VX:         vel[0],
		VY:         vel[1],
		VZ:         vel[2],
	}
}
