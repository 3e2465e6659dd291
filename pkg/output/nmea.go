package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/sondedec/sondedec/pkg/sonde"
)

// nmeaChecksum XOR-folds a sentence body the same way
// pkg/gnssgo/nmea.CalculateNMEAChecksum validates incoming sentences;
// here it is run in the generating direction instead.
func nmeaChecksum(body string) string {
	var checksum uint8
	for i := 0; i < len(body); i++ {
		checksum ^= body[i]
	}
	return fmt.Sprintf("%02X", checksum)
}

func nmeaLatLon(lat, lon float64) (latStr, latHemi, lonStr, lonHemi string) {
	latHemi, lonHemi = "N", "E"
	if lat < 0 {
		latHemi, lat = "S", -lat
	}
	if lon < 0 {
		lonHemi, lon = "W", -lon
	}
	latDeg := math.Floor(lat)
	latMin := (lat - latDeg) * 60
	lonDeg := math.Floor(lon)
	lonMin := (lon - lonDeg) * 60
	latStr = fmt.Sprintf("%02d%07.4f", int(latDeg), latMin)
	lonStr = fmt.Sprintf("%03d%07.4f", int(lonDeg), lonMin)
	return
}

// FormatGGA renders a decoded frame's position as an NMEA GGA sentence
// (fix quality fixed at 1/GPS, HDOP/geoid-separation fields left at the
// reference's "not computed" convention of 0.0, since the radiosonde
// decoder does not itself run a DOP-aware solve for onboard-computed
// fixes such as RS41's).
func FormatGGA(f sonde.DecodedFrame) string {
	if !f.HasPosition {
		return ""
	}
	latStr, latHemi, lonStr, lonHemi := nmeaLatLon(f.Pos.Lat, f.Pos.Lon)
	body := fmt.Sprintf("GPGGA,%02d%02d%06.3f,%s,%s,%s,%s,1,00,0.0,%.1f,M,0.0,M,,",
		f.Hour, f.Minute, f.Second, latStr, latHemi, lonStr, lonHemi, f.Pos.Alt)
	return "$" + body + "*" + nmeaChecksum(body)
}

// FormatRMC renders a decoded frame's position/velocity as an NMEA RMC
// sentence; heading is the frame's already-computed track angle, speed is
// converted from m/s to knots (1 m/s = 1.943844 kn).
func FormatRMC(f sonde.DecodedFrame) string {
	if !f.HasPosition {
		return ""
	}
	latStr, latHemi, lonStr, lonHemi := nmeaLatLon(f.Pos.Lat, f.Pos.Lon)
	speedKn := f.VelH * 1.943844
	body := fmt.Sprintf("GPRMC,%02d%02d%06.3f,A,%s,%s,%s,%s,%.2f,%.1f,%02d%02d%02d,,,A",
		f.Hour, f.Minute, f.Second, latStr, latHemi, lonStr, lonHemi, speedKn, f.Heading,
		f.Day, f.Month, f.Year%100)
	return "$" + body + "*" + nmeaChecksum(body)
}

// FormatNMEA joins GGA and RMC sentences with CRLF, the common
// convention for multi-sentence NMEA output consumed one
// CRLF-terminated sentence at a time.
func FormatNMEA(f sonde.DecodedFrame) string {
	var lines []string
	if gga := FormatGGA(f); gga != "" {
		lines = append(lines, gga)
	}
	if rmc := FormatRMC(f); rmc != "" {
		lines = append(lines, rmc)
	}
	return strings.Join(lines, "\r\n")
}
