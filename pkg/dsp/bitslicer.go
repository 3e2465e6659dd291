package dsp

import "errors"

// ErrEOF is returned by BitSlicer when the underlying sample source is
// exhausted mid-symbol; the frame under construction must be discarded.
var ErrEOF = errors.New("dsp: sample source exhausted")

// SampleReader is the minimal pull interface BitSlicer needs from a
// SampleSource: one real sample per call, io.EOF-like termination via
// ErrEOF.
type SampleReader interface {
	NextSample() (float64, error)
}

// BitSlicer integrates samples across each symbol interval to recover
// hard or soft bit values. bitgrenze carries the fractional integration
// boundary from one call to the next, as an offset from the next unread
// sample, so the average consumed sample count per bit equals
// samplesPerBit exactly even when samplesPerBit is not an integer.
type BitSlicer struct {
	src           SampleReader
	samplesPerBit float64
	bitgrenze     float64

	// spike suppression keeps a 3-tap trailing average.
	tap    [3]float64
	tapLen int
}

// NewBitSlicer constructs a slicer reading from src at the given
// samples-per-bit rate.
func NewBitSlicer(src SampleReader, samplesPerBit float64) *BitSlicer {
	return &BitSlicer{src: src, samplesPerBit: samplesPerBit}
}

func (b *BitSlicer) pushTap(x float64) float64 {
	avg := (b.tap[0] + b.tap[1] + b.tap[2]) / 3
	out := x
	if b.tapLen >= 3 && absf(x-avg) > 0.5 {
		out = avg + 0.27*(x-avg)
	}
	b.tap[0], b.tap[1], b.tap[2] = b.tap[1], b.tap[2], x
	if b.tapLen < 3 {
		b.tapLen++
	}
	return out
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// integrate sums symlen*samplesPerBit samples (flipping sign on the first
// half of a Manchester pair when symlen is 2), consuming either
// floor(sps) or ceil(sps) samples per bit so the long-run average is
// exactly sps.
func (b *BitSlicer) integrate(symlen int, reset, suppressSpikes bool) (sum float64, err error) {
	if reset {
		b.bitgrenze = 0
	}
	target := b.bitgrenze + float64(symlen)*b.samplesPerBit
	half := b.bitgrenze + float64(symlen-1)*b.samplesPerBit

	var consumed float64
	for consumed < target {
		x, rerr := b.src.NextSample()
		if rerr != nil {
			return 0, ErrEOF
		}
		if suppressSpikes {
			x = b.pushTap(x)
		}
		sign := 1.0
		if consumed < half {
			sign = -1.0 // first half of a Manchester pair carries inverted sign
		}
		sum += sign * x
		consumed++
	}
	b.bitgrenze = target - consumed
	return sum, nil
}

// ReadBit integrates one symbol (symlen=1, or 2 for Manchester pairing)
// and returns the hard bit: 1 if the integrated sum is >= 0, else 0. ofs
// samples are skipped before integrating, delaying the sampling phase
// (the -d bit-offset flag); a negative ofs skips nothing and has no
// effect. inv flips the decided polarity.
func (b *BitSlicer) ReadBit(symlen int, reset, inv bool, ofs int) (bit int, err error) {
	for i := 0; i < ofs; i++ {
		if _, rerr := b.src.NextSample(); rerr != nil {
			return 0, ErrEOF
		}
	}
	sum, err := b.integrate(symlen, reset, false)
	if err != nil {
		return 0, err
	}
	v := sum >= 0
	if inv {
		v = !v
	}
	if v {
		return 1, nil
	}
	return 0, nil
}

// ReadSoftBit is the soft-decision variant: it returns the mean integrated
// sample value clipped to +-2.5*level and divided by level (the
// header-derived average symbol amplitude), so a symbol at the header's
// amplitude reads as +-1.0 and the result lies within [-2.5, 2.5].
func (b *BitSlicer) ReadSoftBit(symlen int, reset bool, level float64) (soft float64, err error) {
	sum, err := b.integrate(symlen, reset, true)
	if err != nil {
		return 0, err
	}
	n := float64(symlen) * b.samplesPerBit
	mean := sum / n
	if level <= 0 {
		level = 1
	}
	clip := 2.5 * level
	if mean > clip {
		mean = clip
	}
	if mean < -clip {
		mean = -clip
	}
	return mean / level, nil
}
