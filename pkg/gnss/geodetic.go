package gnss

import "math"

// WGS84 ellipsoid semi-axes, meters.
const (
	earthA = 6378137.0
	earthB = 6356752.31424518
)

var earthA2B2 = earthA*earthA - earthB*earthB

// LightSpeed is the vacuum speed of light, m/s, per IS-GPS-200.
const LightSpeed = 299792458.0

// EarthRotationRate is the WGS84 Earth rotation rate, rad/s.
const EarthRotationRate = 7.2921151467e-05

// RangeEstimate is a nominal GPS-satellite-to-ground signal transit time,
// seconds. Bancroft and LinearizeVelocity always use it for the Sagnac
// correction; LinearizePosition uses each satellite's range/LightSpeed
// and falls back to RangeEstimate only when that lies outside 60..100 ms.
const RangeEstimate = 0.072

// ECEF holds an Earth-centered, Earth-fixed Cartesian position in meters.
type ECEF struct {
	X, Y, Z float64
}

// Geodetic holds a WGS84 geodetic position: latitude/longitude in degrees,
// altitude in meters above the ellipsoid.
type Geodetic struct {
	Lat, Lon, Alt float64
}

// ECEF2Elli converts an ECEF position to geodetic lat/lon/alt using the
// Bowring closed-form iteration-free approximation.
func ECEF2Elli(p ECEF) Geodetic {
	ea2 := earthA2B2 / (earthA * earthA)
	eb2 := earthA2B2 / (earthB * earthB)

	lam := math.Atan2(p.Y, p.X)
	rho := math.Sqrt(p.X*p.X + p.Y*p.Y)
	t := math.Atan2(p.Z*earthA, rho*earthB)

	sint, cost := math.Sin(t), math.Cos(t)
	phi := math.Atan2(p.Z+eb2*earthB*sint*sint*sint, rho-ea2*earthA*cost*cost*cost)

	r := earthA / math.Sqrt(1-ea2*math.Sin(phi)*math.Sin(phi))
	alt := rho/math.Cos(phi) - r

	return Geodetic{Lat: phi * 180.0 / math.Pi, Lon: lam * 180.0 / math.Pi, Alt: alt}
}

// Elli2ECEF converts a WGS84 geodetic position back to ECEF, the inverse of
// ECEF2Elli.
func Elli2ECEF(g Geodetic) ECEF {
	ea2 := earthA2B2 / (earthA * earthA)
	phi := g.Lat * math.Pi / 180.0
	lam := g.Lon * math.Pi / 180.0

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	r := earthA / math.Sqrt(1-ea2*sinPhi*sinPhi)

	return ECEF{
		X: (r + g.Alt) * cosPhi * math.Cos(lam),
		Y: (r + g.Alt) * cosPhi * math.Sin(lam),
		Z: (r*(1-ea2) + g.Alt) * sinPhi,
	}
}

// dist returns the straight-line distance between two ECEF positions.
func dist(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx, dy, dz := x2-x1, y2-y1, z2-z1
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// rotZ rotates (x1,y1,z1) about the Z axis by angle radians, used to
// correct a satellite's transmit-time ECEF position for Earth rotation
// during the signal's flight time (the Sagnac effect).
func rotZ(x1, y1, z1, angle float64) (x2, y2, z2 float64) {
	cosa, sina := math.Cos(angle), math.Sin(angle)
	x2 = cosa*x1 + sina*y1
	y2 = -sina*x1 + cosa*y1
	z2 = z1
	return x2, y2, z2
}
