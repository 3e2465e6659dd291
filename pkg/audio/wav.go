package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WAVFormat is the subset of a RIFF/WAVE fmt chunk the decoder cares
// about: PCM, 1 or 2 channels, 8 or 16 bits per sample, arbitrary rate.
type WAVFormat struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// WAVSource is a SampleSource reading RIFF/WAVE PCM; it exists only to
// hand the decode core a pure sample stream, with container parsing kept
// out of the core's concerns.
type WAVSource struct {
	pcm *PCMSource
	fmt WAVFormat
}

// OpenWAV parses a RIFF/WAVE header from r and returns a SampleSource
// decoding the given (0-based) channel.
func OpenWAV(r io.Reader, useChannel int) (*WAVSource, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("audio: short RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("audio: not a RIFF/WAVE stream")
	}

	var format WAVFormat
	var dataFound bool

	for !dataFound {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("audio: truncated WAV chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("audio: truncated fmt chunk: %w", err)
			}
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			format.BitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			dataFound = true
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("audio: skipping chunk %q: %w", id, err)
			}
			if size%2 == 1 {
				io.CopyN(io.Discard, r, 1) // RIFF chunks are word-aligned
			}
		}
	}

	if format.Channels < 1 {
		format.Channels = 1
	}
	bits := Bits16
	if format.BitsPerSample == 8 {
		bits = Bits8
	}

	return &WAVSource{
		pcm: NewPCMSource(r, format.SampleRate, bits, format.Channels, useChannel),
		fmt: format,
	}, nil
}

func (w *WAVSource) SampleRate() int        { return w.pcm.SampleRate() }
func (w *WAVSource) Format() WAVFormat      { return w.fmt }
func (w *WAVSource) NextSample() (float64, error) { return w.pcm.NextSample() }
