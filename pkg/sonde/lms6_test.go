package sonde

import (
	"encoding/binary"
	"testing"

	"github.com/sondedec/sondedec/pkg/channel"
	"github.com/stretchr/testify/require"
)

func buildLMS6Frame(t *testing.T) []byte {
	t.Helper()
	codeword := make([]byte, lms6ParLen+lms6FrmLen)
	payload := codeword[lms6ParLen:]

	copy(payload[lms6PosSondeSN:], []byte{0x00, 0x7A, 0x01, 0x02})
	binary.BigEndian.PutUint16(payload[lms6PosFrameNb:], 42)
	binary.BigEndian.PutUint32(payload[lms6PosGPSTOW:], 12345)
	binary.BigEndian.PutUint32(payload[lms6PosGPSLat:], uint32(int32(48.5*1e6)))
	binary.BigEndian.PutUint32(payload[lms6PosGPSLon:], uint32(int32(11.5*1e6)))
	binary.BigEndian.PutUint32(payload[lms6PosGPSAlt:], uint32(int32(2000*1e2)))

	rs := channel.NewRS255CCSDS()
	require.NoError(t, rs.Encode(codeword))

	frame := make([]byte, lms6SyncLen+len(codeword))
	copy(frame[lms6SyncLen:], codeword)
	return frame
}

func TestParseLMS6RoundTrip(t *testing.T) {
	frame := buildLMS6Frame(t)
	d := NewLMS6Decoder()
	out := d.ParseLMS6(frame, 0)

	require.GreaterOrEqual(t, out.RSErrors, 0)
	require.Equal(t, 42, out.FrameNb)
	require.True(t, out.HasPosition)
	require.InDelta(t, 48.5, out.Pos.Lat, 1e-5)
	require.InDelta(t, 11.5, out.Pos.Lon, 1e-5)
	require.InDelta(t, 2000, out.Pos.Alt, 1e-2)
}

func TestParseLMS6CorrectsErrors(t *testing.T) {
	frame := buildLMS6Frame(t)
	// flip a few bytes within the RS-protected region
	frame[lms6SyncLen+5] ^= 0xFF
	frame[lms6SyncLen+50] ^= 0x3C

	d := NewLMS6Decoder()
	out := d.ParseLMS6(frame, 0)
	require.GreaterOrEqual(t, out.RSErrors, 0)
	require.Equal(t, 42, out.FrameNb)
}
