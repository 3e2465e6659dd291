package sonde

import "github.com/sondedec/sondedec/pkg/gnss"

// StatusBit indexes one bit of a DecodedFrame's per-block CRC status
// bitmap.
type StatusBit int

const (
	StatusGPS1 StatusBit = 1 << iota
	StatusGPS2
	StatusGPS3
	StatusPTU
	StatusAux
)

// DecodedFrame is "Decoded telemetry record": emitted
// and then dropped each frame, never retained across calls.
type DecodedFrame struct {
	Sonde SondeName

	FrameNb  int
	SerialNo string

	GPSWeek int
	GPSTOW  float64
	Weekday int

	Year, Month, Day   int
	Hour, Minute       int
	Second             float64

	HasPosition bool
	Pos         gnss.Geodetic
	VelH        float64 // m/s
	Heading     float64 // degrees, 0..360
	VelV        float64 // m/s

	HasPTU      bool
	Temperature float64 // Celsius
	Humidity    float64 // percent
	Pressure    float64 // hPa

	Subtype string
	FreqKHz int

	CRCStatus uint32 // per-block bitmap, bit set = CRC OK
	RSErrors  int    // negative = uncorrectable
	XData string
}

// SondeName mirrors frame.SondeKind without importing pkg/frame, keeping
// pkg/sonde usable independently of the assembler.
type SondeName int

const (
	NameRS41 SondeName = iota
	NameRS92
	NameDFM
	NameLMS6
	NameM10
)

func (n SondeName) String() string {
	switch n {
	case NameRS41:
		return "RS41"
	case NameRS92:
		return "RS92"
	case NameDFM:
		return "DFM"
	case NameLMS6:
		return "LMS6"
	case NameM10:
		return "M10"
	default:
		return "unknown"
	}
}
