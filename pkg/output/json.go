package output

import (
	"encoding/json"
	"fmt"

	"github.com/sondedec/sondedec/pkg/sonde"
)

// jsonFrame is the line-delimited JSON output record's key set. Fields
// use `omitempty` only where a value is genuinely optional (temp/
// humidity/pressure, freq, sats); the rest are always present even if
// zero, since a frame with no GPS fix still reports id/frame/datetime.
type jsonFrame struct {
	Type    string  `json:"type"`
	Frame   int     `json:"frame"`
	ID      string  `json:"id"`
	Datetime string `json:"datetime"`

	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	Alt     float64 `json:"alt,omitempty"`
	VelH    float64 `json:"vel_h,omitempty"`
	Heading float64 `json:"heading,omitempty"`
	VelV    float64 `json:"vel_v,omitempty"`

	Temp     *float64 `json:"temp,omitempty"`
	Humidity *float64 `json:"humidity,omitempty"`
	Pressure *float64 `json:"pressure,omitempty"`

	Subtype string `json:"subtype,omitempty"`
	Freq    int    `json:"freq,omitempty"`

	CRCStatus uint32 `json:"crc_status"`
	RSErrors  int    `json:"rs_errors"`

	RefDatetime string `json:"ref_datetime"`
	RefPosition string `json:"ref_position"`

	Session string `json:"session,omitempty"`
}

// FormatJSON renders one decoded frame as a line-delimited JSON object:
// `datetime` is ISO-8601 UTC with a literal
// "Z" suffix, `ref_datetime` is always "GPS" (the time base the frame's
// GPSWeek/GPSTOW fields are expressed in) and `ref_position` is always
// "ellipsoid" (WGS84 height, not orthometric/MSL). session correlates
// every line emitted by one decode run (cmd/sondedec's --input invocation),
// letting a downstream aggregator tell concurrent runs' output apart; it
// is omitted when the caller has no run identity to report.
func FormatJSON(f sonde.DecodedFrame, session string) ([]byte, error) {
	jf := jsonFrame{
		Type:        f.Sonde.String(),
		Frame:       f.FrameNb,
		ID:          f.SerialNo,
		Datetime:    fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%06.3fZ", f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second),
		Subtype:     f.Subtype,
		Freq:        f.FreqKHz,
		CRCStatus:   f.CRCStatus,
		RSErrors:    f.RSErrors,
		RefDatetime: "GPS",
		RefPosition: "ellipsoid",
		Session:     session,
	}

	if f.HasPosition {
		jf.Lat, jf.Lon, jf.Alt = f.Pos.Lat, f.Pos.Lon, f.Pos.Alt
		jf.VelH, jf.Heading, jf.VelV = f.VelH, f.Heading, f.VelV
	}
	if f.HasPTU {
		jf.Temp = &f.Temperature
		jf.Humidity = &f.Humidity
		jf.Pressure = &f.Pressure
	}

	return json.Marshal(jf)
}
