package sonde

import (
	"math"

	"github.com/sondedec/sondedec/pkg/gnss"
)

// ecefVelToNEU projects an ECEF velocity onto the local North-East-Up
// basis at pos and reduces it to horizontal speed, heading (atan2 of
// East over North, +360 if negative), and vertical speed.
func ecefVelToNEU(pos gnss.ECEF, vx, vy, vz float64) (velH, heading, velV float64) {
	geo := gnss.ECEF2Elli(pos)
	lat := geo.Lat * math.Pi / 180.0
	lon := geo.Lon * math.Pi / 180.0

	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	north := -sinLat*cosLon*vx - sinLat*sinLon*vy + cosLat*vz
	east := -sinLon*vx + cosLon*vy
	up := cosLat*cosLon*vx + cosLat*sinLon*vy + sinLat*vz

	velH = math.Sqrt(north*north + east*east)
	heading = math.Atan2(east, north) * 180.0 / math.Pi
	if heading < 0 {
		heading += 360
	}
	velV = up
	return velH, heading, velV
}
