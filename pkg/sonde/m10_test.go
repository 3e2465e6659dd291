package sonde

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckM10DetectsBitFlip(t *testing.T) {
	msg := []byte{0x10, 0xB6, 0xCA, 0x11, 0x22, 0x96, 0x12, 0xF8, 0x01, 0x02}
	base := CheckM10(msg)
	for i := range msg {
		flipped := append([]byte(nil), msg...)
		flipped[i] ^= 0x01
		require.NotEqual(t, base, CheckM10(flipped))
	}
}

func buildM10Frame(t *testing.T, lat, lon, alt float64, week int, tow float64) []byte {
	t.Helper()
	frame := make([]byte, m10PosCheck+2)

	binary.BigEndian.PutUint16(frame[m10PosGPSweek:], uint16(week))
	binary.BigEndian.PutUint32(frame[m10PosGPSTOW:], uint32(tow))
	binary.BigEndian.PutUint32(frame[m10PosGPSLat:], uint32(int32(lat*m10LatLonScale)))
	binary.BigEndian.PutUint32(frame[m10PosGPSLon:], uint32(int32(lon*m10LatLonScale)))
	binary.BigEndian.PutUint32(frame[m10PosGPSAlt:], uint32(int32(alt*1000.0)))
	copy(frame[m10PosSN:], []byte("A1234"))

	cs := CheckM10(frame[:m10PosCheck])
	frame[m10PosCheck] = byte(cs >> 8)
	frame[m10PosCheck+1] = byte(cs)
	return frame
}

func TestParseM10RoundTrip(t *testing.T) {
	frame := buildM10Frame(t, 48.1234, 11.5678, 1234.5, 2200, 345600)
	d := NewM10Decoder()
	out := d.ParseM10(frame)

	require.Equal(t, 0, out.RSErrors)
	require.True(t, out.HasPosition)
	require.InDelta(t, 48.1234, out.Pos.Lat, 1e-3)
	require.InDelta(t, 11.5678, out.Pos.Lon, 1e-3)
	require.InDelta(t, 1234.5, out.Pos.Alt, 1.0)
	require.Equal(t, 2200, out.GPSWeek)
	require.Equal(t, "A1234", out.SerialNo)
}

func TestParseM10RejectsBadChecksum(t *testing.T) {
	frame := buildM10Frame(t, 48.0, 11.0, 500, 2200, 1000)
	frame[0] ^= 0xFF
	d := NewM10Decoder()
	out := d.ParseM10(frame)
	require.Equal(t, -1, out.RSErrors)
}
