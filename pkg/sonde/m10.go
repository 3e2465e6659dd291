package sonde

import (
	"encoding/binary"
	"math"

	"github.com/sondedec/sondedec/pkg/gnss"
)

// M10 layout offsets. Unlike RS41/RS92/LMS6, M10 has no Reed-Solomon or
// convolutional coding; checkM10 (below) is its sole integrity check.
const (
	m10PosGPSvO    = 0x04
	m10PosGPSvN    = 0x06
	m10PosGPSvV    = 0x08
	m10PosGPSTOW   = 0x0A
	m10PosGPSLat   = 0x0E
	m10PosGPSLon   = 0x12
	m10PosGPSAlt   = 0x16
	m10PosGPSweek  = 0x20
	m10PosSN       = 0x5D
	m10PosCheck    = 0x63

	// m10LatLonScale is 2^32/360, converting the raw 32-bit angle to
	// degrees.
	m10LatLonScale = 0xB60B60

	// m10VelScale converts the raw 16-bit velocity component to m/s
	// (1 m/s = 1.94 kn, scaled by 100).
	m10VelScale = 2e2
)

// updateCheckM10 folds one byte into the running M10 checksum state: a
// hand-rolled, non-CRC mixing function unique to the Meisei M10/M10-Pilot
// protocol (no table-driven CRC is used here, unlike every other
// supported sonde).
func updateCheckM10(c int, b byte) int {
	c1 := c & 0xFF

	bb := int(b)
	bb = (bb >> 1) | ((bb & 1) << 7)
	bb ^= (bb >> 2) & 0xFF
	bb &= 0xFF

	t6 := (c & 1) ^ ((c >> 2) & 1) ^ ((c >> 4) & 1)
	t7 := ((c >> 1) & 1) ^ ((c >> 3) & 1) ^ ((c >> 5) & 1)
	t := (c & 0x3F) | (t6 << 6) | (t7 << 7)

	s := (c >> 7) & 0xFF
	s ^= (s >> 2) & 0xFF

	c0 := bb ^ t ^ s

	return ((c1 << 8) | (c0 & 0xFF)) & 0xFFFF
}

// CheckM10 runs updateCheckM10 over msg[:len] to produce the frame's
// 16-bit checksum.
func CheckM10(msg []byte) int {
	cs := 0
	for _, b := range msg {
		cs = updateCheckM10(cs, b)
	}
	return cs & 0xFFFF
}

// M10Decoder is stateless: M10 carries no per-serial calibration table,
// so every frame is parsed independently.
type M10Decoder struct{}

func NewM10Decoder() *M10Decoder { return &M10Decoder{} }

// ParseM10 decodes one post-channel-decode M10 frame (no RS/Hamming/
// Viterbi stage applies; frame is the raw MSB-first packed byte buffer
// the FrameAssembler emits for frame.M10Profile).
func (d *M10Decoder) ParseM10(frame []byte) DecodedFrame {
	out := DecodedFrame{Sonde: NameM10}

	if len(frame) < m10PosCheck+2 {
		out.RSErrors = -1
		return out
	}

	want := int(frame[m10PosCheck])<<8 | int(frame[m10PosCheck+1])
	got := CheckM10(frame[:m10PosCheck])
	if want == got {
		out.RSErrors = 0
		out.CRCStatus = uint32(StatusGPS1)
	} else {
		out.RSErrors = -1
	}

	out.SerialNo = sanitizeSerial(frame[m10PosSN : m10PosSN+5])

	out.GPSWeek = int(binary.BigEndian.Uint16(frame[m10PosGPSweek : m10PosGPSweek+2]))
	tow := float64(binary.BigEndian.Uint32(frame[m10PosGPSTOW : m10PosGPSTOW+4]))
	out.GPSTOW = tow
	out.Weekday = int(tow/86400.0) % 7
	out.Year, out.Month, out.Day, out.Hour, out.Minute, out.Second = gnss.BrokenDownTime(out.GPSWeek, tow)

	gpslat := int32(binary.BigEndian.Uint32(frame[m10PosGPSLat : m10PosGPSLat+4]))
	gpslon := int32(binary.BigEndian.Uint32(frame[m10PosGPSLon : m10PosGPSLon+4]))
	gpsalt := int32(binary.BigEndian.Uint32(frame[m10PosGPSAlt : m10PosGPSAlt+4]))

	lat := float64(gpslat) / m10LatLonScale
	lon := float64(gpslon) / m10LatLonScale
	alt := float64(gpsalt) / 1000.0

	if alt > -1000 && alt < 80000 {
		out.HasPosition = true
		out.Pos.Lat = lat
		out.Pos.Lon = lon
		out.Pos.Alt = alt

		vx := float64(int16(binary.BigEndian.Uint16(frame[m10PosGPSvO:m10PosGPSvO+2]))) / m10VelScale
		vy := float64(int16(binary.BigEndian.Uint16(frame[m10PosGPSvN:m10PosGPSvN+2]))) / m10VelScale
		vv := float64(int16(binary.BigEndian.Uint16(frame[m10PosGPSvV:m10PosGPSvV+2]))) / m10VelScale

		out.VelH = math.Hypot(vx, vy)
		heading := math.Atan2(vx, vy) * 180.0 / math.Pi
		if heading < 0 {
			heading += 360
		}
		out.Heading = heading
		out.VelV = vv
	}

	out.Subtype = "M10"
	return out
}
