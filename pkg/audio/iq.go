package audio

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"math/cmplx"
)

// IQSource reads interleaved float32 I/Q samples and applies an
// FM-discriminator pre-stage (argument of conj(z[n-1])*z[n]), optionally
// followed by a simple one-pole low-pass, producing the same real-valued
// sample stream a WAV/PCM source would.
type IQSource struct {
	r       *bufio.Reader
	rate    int
	prev    complex128
	have    bool
	lowpass bool
	lpState float64
	lpAlpha float64
}

// NewIQSource wraps r as an IQ-discriminating SampleSource at the given
// sample rate. lowpass enables a one-pole smoothing filter on the
// discriminator output with cutoff alpha in (0,1].
func NewIQSource(r io.Reader, rate int, lowpass bool, lpAlpha float64) *IQSource {
	if lpAlpha <= 0 || lpAlpha > 1 {
		lpAlpha = 0.2
	}
	return &IQSource{r: bufio.NewReader(r), rate: rate, lowpass: lowpass, lpAlpha: lpAlpha}
}

func (s *IQSource) SampleRate() int { return s.rate }

func (s *IQSource) readIQ() (complex128, error) {
	var buf [8]byte
	if _, err := io.ReadFull(s.r, buf[:]); err != nil {
		return 0, ErrEOF
	}
	i := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
	q := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
	return complex(float64(i), float64(q)), nil
}

// NextSample returns the discriminated real-valued sample for the next
// IQ pair.
func (s *IQSource) NextSample() (float64, error) {
	z, err := s.readIQ()
	if err != nil {
		return 0, err
	}
	if !s.have {
		s.prev = z
		s.have = true
		z2, err2 := s.readIQ()
		if err2 != nil {
			return 0, err2
		}
		z = z2
	}
	d := cmplx.Phase(cmplx.Conj(s.prev) * z)
	s.prev = z
	out := d / math.Pi

	if s.lowpass {
		s.lpState += s.lpAlpha * (out - s.lpState)
		out = s.lpState
	}
	return out, nil
}

// SpectralOffset estimates a constant tuning offset in Hertz by summing
// phase increments of the discriminator over headerLen IQ samples.
func SpectralOffset(samples []complex128, sampleRate int) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(samples); i++ {
		sum += cmplx.Phase(cmplx.Conj(samples[i-1]) * samples[i])
	}
	mean := sum / float64(len(samples)-1)
	return mean * float64(sampleRate) / (2 * math.Pi)
}
