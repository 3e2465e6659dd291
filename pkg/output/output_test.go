package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sondedec/sondedec/pkg/gnss"
	"github.com/sondedec/sondedec/pkg/sonde"
	"github.com/stretchr/testify/require"
)

func sampleFrame() sonde.DecodedFrame {
	return sonde.DecodedFrame{
		Sonde:       sonde.NameRS41,
		FrameNb:     1234,
		SerialNo:    "R1234567",
		Weekday:     2,
		Year:        2026, Month: 7, Day: 29,
		Hour: 12, Minute: 34, Second: 5.678,
		HasPosition: true,
		Pos:         gnss.Geodetic{Lat: 48.1, Lon: 11.5, Alt: 1234.5},
		VelH:        3.2, Heading: 90, VelV: -1.1,
		HasPTU:      true,
		Temperature: 15.2,
		CRCStatus:   uint32(sonde.StatusGPS1 | sonde.StatusGPS3),
		RSErrors:    0,
		Subtype:     "RS41-SG",
	}
}

func TestFormatLineContainsExpectedFields(t *testing.T) {
	line := FormatLine(sampleFrame())
	require.Contains(t, line, "[1234] (R1234567)")
	require.Contains(t, line, "Tue")
	require.Contains(t, line, "lat: 48.100000")
	require.Contains(t, line, "[T=15.2C]")
	require.Contains(t, line, "[OK]")
}

func TestFormatLineOmitsPositionWhenAbsent(t *testing.T) {
	f := sampleFrame()
	f.HasPosition = false
	line := FormatLine(f)
	require.NotContains(t, line, "lat:")
}

func TestFormatJSONRoundTrip(t *testing.T) {
	raw, err := FormatJSON(sampleFrame(), "")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "RS41", decoded["type"])
	require.Equal(t, float64(1234), decoded["frame"])
	require.Equal(t, "R1234567", decoded["id"])
	require.Equal(t, "GPS", decoded["ref_datetime"])
	require.Equal(t, "ellipsoid", decoded["ref_position"])
}

func TestFormatGGAChecksumValidates(t *testing.T) {
	sentence := FormatGGA(sampleFrame())
	require.NotEmpty(t, sentence)
	star := strings.LastIndex(sentence, "*")
	require.Greater(t, star, 0)
	body := sentence[1:star]
	require.Equal(t, nmeaChecksum(body), sentence[star+1:])
}
