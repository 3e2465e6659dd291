package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// ErrEOF is the sentinel SampleSource implementations return once the
// underlying reader is exhausted; it is the only cancellation signal
// downstream components observe.
var ErrEOF = errors.New("audio: sample source exhausted")

// SampleSource is a lazy, finite, non-restartable sequence of mono
// real-valued samples in [-1,+1], tagged with a sample rate.
type SampleSource interface {
	NextSample() (float64, error)
	SampleRate() int
}

// BitDepth selects the raw PCM sample encoding.
type BitDepth int

const (
	Bits8 BitDepth = 8
	Bits16 BitDepth = 16
)

// PCMSource reads headerless raw PCM: 8-bit unsigned centered at 128, or
// 16-bit signed little-endian, with an arbitrary channel count and a
// selected channel.
type PCMSource struct {
	r          *bufio.Reader
	rate       int
	bits       BitDepth
	channels   int
	useChannel int // 0-based index of the channel to decode
}

// NewPCMSource wraps r as a raw-PCM SampleSource at the given sample
// rate/bit depth/channel count, decoding channel useChannel (0 = left,
// 1 = right for stereo streams -- the --ch2 flag selects useChannel=1).
func NewPCMSource(r io.Reader, rate int, bits BitDepth, channels, useChannel int) *PCMSource {
	if channels < 1 {
		channels = 1
	}
	return &PCMSource{r: bufio.NewReader(r), rate: rate, bits: bits, channels: channels, useChannel: useChannel}
}

func (p *PCMSource) SampleRate() int { return p.rate }

func (p *PCMSource) readRawFrame() (float64, error) {
	switch p.bits {
	case Bits8:
		b, err := p.r.ReadByte()
		if err != nil {
			return 0, ErrEOF
		}
		return (float64(b) - 128) / 128.0, nil
	default:
		var buf [2]byte
		if _, err := io.ReadFull(p.r, buf[:]); err != nil {
			return 0, ErrEOF
		}
		v := int16(binary.LittleEndian.Uint16(buf[:]))
		return float64(v) / 32768.0, nil
	}
}

// NextSample reads one interleaved frame and returns the selected
// channel's sample, discarding the others.
func (p *PCMSource) NextSample() (float64, error) {
	var selected float64
	for ch := 0; ch < p.channels; ch++ {
		x, err := p.readRawFrame()
		if err != nil {
			return 0, err
		}
		if ch == p.useChannel {
			selected = x
		}
	}
	return selected, nil
}
