package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildWAV(rate int, bits int, channels int, samples []int16) []byte {
	var buf bytes.Buffer
	dataSize := len(samples) * 2
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	byteRate := rate * channels * bits / 8
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	blockAlign := channels * bits / 8
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestOpenWAVReadsMonoSamples(t *testing.T) {
	raw := buildWAV(48000, 16, 1, []int16{0, 16384, -16384, 32767})
	src, err := OpenWAV(bytes.NewReader(raw), 0)
	require.NoError(t, err)
	require.Equal(t, 48000, src.SampleRate())

	want := []float64{0, 0.5, -0.5, 32767.0 / 32768.0}
	for _, w := range want {
		x, err := src.NextSample()
		require.NoError(t, err)
		require.InDelta(t, w, x, 1e-6)
	}
	_, err = src.NextSample()
	require.ErrorIs(t, err, ErrEOF)
}

func TestOpenWAVStereoChannelSelect(t *testing.T) {
	// interleaved L,R,L,R
	raw := buildWAV(8000, 16, 2, []int16{100, -100, 200, -200})
	src, err := OpenWAV(bytes.NewReader(raw), 1) // right channel
	require.NoError(t, err)

	x, err := src.NextSample()
	require.NoError(t, err)
	require.InDelta(t, -100.0/32768.0, x, 1e-9)

	x, err = src.NextSample()
	require.NoError(t, err)
	require.InDelta(t, -200.0/32768.0, x, 1e-9)
}

func TestOpenWAVRejectsNonRIFF(t *testing.T) {
	_, err := OpenWAV(bytes.NewReader([]byte("not a wav file at all")), 0)
	require.Error(t, err)
}
