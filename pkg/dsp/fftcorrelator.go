package dsp

import "math"

// fftCorrelator implements the FFT-accelerated matched-filter variant:
// the matched-filter reference is stored time-reversed and DFT'd once at
// init; each peak-search call DFTs the current K+L sample block,
// multiplies pointwise by the precomputed reference spectrum, and
// inverse-DFTs to obtain a length-K correlation block.
type fftCorrelator struct {
	l       int // reference length
	k       int // search block length
	size    int // padded FFT size, next pow2 of k+l
	refSpec []complex128
}

// NewFFT builds the FFT-variant correlator for a matched-filter reference
// of length L, searching blocks of K samples (K is typically one header's
// worth of bit intervals).
func NewFFT(match []float64, k int) *fftCorrelator {
	l := len(match)
	size := nextPow2(k + l)

	// time-reversed reference, conjugated-then-reversed for correlation
	// via multiplication.
	ref := make([]complex128, size)
	for i := 0; i < l; i++ {
		ref[i] = complex(match[l-1-i], 0)
	}
	fft(ref, false)

	return &fftCorrelator{l: l, k: k, size: size, refSpec: ref}
}

// Search runs one FFT-correlation pass over a length K+L real sample
// block, returning the peak absolute correlation value/position within
// [L-1, K+L) with both boundary indices rejected as artifacts,
// normalized by size*sqrt(variance).
func (f *fftCorrelator) Search(block []float64, variance float64) (Peak, bool) {
	if len(block) < f.k+f.l {
		return Peak{}, false
	}
	buf := make([]complex128, f.size)
	for i := 0; i < f.k+f.l && i < len(block); i++ {
		buf[i] = complex(block[i], 0)
	}
	fft(buf, false)
	for i := range buf {
		buf[i] *= f.refSpec[i]
	}
	fft(buf, true)

	lo := f.l - 1
	hi := f.k + f.l - 1 // exclusive upper rejected boundary is hi itself
	if lo < 0 {
		lo = 0
	}
	if hi > len(buf) {
		hi = len(buf)
	}

	norm := float64(f.size)
	if variance > 0 {
		norm *= math.Sqrt(variance)
	}
	if norm == 0 {
		norm = 1
	}

	best := -1.0
	bestPos := -1
	for i := lo + 1; i < hi; i++ { // reject both lo and hi boundaries
		re := real(buf[i])
		v := math.Abs(re) / norm
		if v > best {
			best, bestPos = v, i
		}
	}
	if bestPos < 0 {
		return Peak{}, false
	}
	return Peak{Value: best, Pos: int64(bestPos)}, true
}
