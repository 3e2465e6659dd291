package dsp

import "math"

// Peak is a candidate header position reported by SymbolSync: the
// normalized correlation value and the sample index (relative to the
// SampleSource's sample count) at which it occurs.
type Peak struct {
	Value float64
	Pos   int64
}

// SymbolSync maintains the sample ring buffer, the matched-filter
// reference, the correlation ring, and the running variance window. One
// value is constructed per sonde type (the reference is immutable for
// the life of a run) and driven synchronously, one sample at a time, by
// the single-threaded decode core.
type SymbolSync struct {
	match []float64 // matched-filter reference, unit L2 norm
	n     int       // len(match)
	delay int64     // matched-filter group delay, in samples

	samples *ring // raw sample window, cap M = 2*n
	corr    *ring // correlation ring, same capacity as samples

	// held local maximum, refreshed per the two-condition rule:
	// distance-exceeded or descent-confirmed.
	maxVal float64
	maxPos int64

	// incremental variance over the last nvar samples.
	nvar     int
	varBuf   []float64
	varHead  int
	varFill  int
	xsum     float64
	qsum     float64

	fft *fftCorrelator // not set by New; NewFFT returns a standalone *fftCorrelator
}

// New constructs a time-domain SymbolSync from a matched-filter reference
// and a samples-per-bit rate (used to size the variance window, nvar =
// 32*sps).
func New(match []float64, samplesPerBit float64) *SymbolSync {
	n := len(match)
	m := 2 * n
	nvar := int(math.Round(32 * samplesPerBit))
	if nvar < 1 {
		nvar = 1
	}
	return &SymbolSync{
		match:   match,
		n:       n,
		delay:   int64(n) / 8,
		samples: newRing(m),
		corr:    newRing(m),
		maxVal:  -2,
		nvar:    nvar,
		varBuf:  make([]float64, nvar),
	}
}

// SampleOut is the read-delayed sample index: reads at SampleOut()-k for
// 0<=k<cap are valid once the ring has filled.
func (s *SymbolSync) SampleOut() int64 { return s.samples.sampleIn - 1 - s.delay }

// PushSample feeds one new real sample in [-1,+1] through the ring buffer,
// the running variance estimator, and (once enough history exists) the
// matched-filter correlator, storing the result into the correlation ring.
func (s *SymbolSync) PushSample(x float64) {
	s.updateVariance(x)
	s.samples.put(x)

	if !s.samples.filled() {
		return
	}

	end := s.samples.sampleIn - 1
	start := end - int64(s.n) + 1

	var num, energy float64
	// endpoints trimmed: skip the first and last sample of the window.
	for k := int64(1); k < int64(s.n)-1; k++ {
		xv := s.samples.at(start + k)
		num += s.match[k] * xv
		energy += xv * xv
	}
	var c float64
	if energy > 0 {
		c = num / math.Sqrt(energy)
	}
	s.corr.put(c)
	s.refreshMax(end)
}

func (s *SymbolSync) updateVariance(x float64) {
	var old float64
	if s.varFill >= s.nvar {
		old = s.varBuf[s.varHead]
	}
	s.xsum += x - old
	s.qsum += (x - old) * (x + old)
	s.varBuf[s.varHead] = x
	s.varHead = (s.varHead + 1) % s.nvar
	if s.varFill < s.nvar {
		s.varFill++
	}
}

// Variance returns the (mean, variance) pair over the last nvar samples.
func (s *SymbolSync) Variance() (mu, variance float64) {
	n := float64(s.varFill)
	if n == 0 {
		return 0, 0
	}
	mu = s.xsum / n
	variance = s.qsum/n - mu*mu
	if variance < 0 {
		variance = 0
	}
	return mu, variance
}

// refreshMax applies the rescan-trigger rule: rescan whenever the
// distance to the held maximum grows stale, or whenever a local descent
// is confirmed at the correlation ring's trailing boundary.
func (s *SymbolSync) refreshMax(corrPos int64) {
	windowSps := int64(4 * s.n) // generous default window in samples; callers
	// typically call GetMaxCorr with an explicit window and rely on this
	// call only to keep the held maximum from growing stale between calls.
	staleDistance := corrPos-s.maxPos > windowSps-4

	descentConfirmed := false
	if corrPos >= 1 {
		cPrev := s.corr.at(corrPos - 1)
		cCur := s.corr.at(corrPos)
		if s.maxVal <= cPrev && cPrev >= cCur {
			descentConfirmed = true
		}
	}

	if staleDistance || descentConfirmed {
		s.rescan(corrPos)
	} else if corrPos >= 1 {
		if v := s.corr.at(corrPos); v > s.maxVal {
			s.maxVal, s.maxPos = v, corrPos
		}
	}
}

func (s *SymbolSync) rescan(end int64) {
	start := end - int64(s.corr.cap()) + 1
	if start < 0 {
		start = 0
	}
	best := -2.0
	bestPos := start
	for i := start; i <= end; i++ {
		v := s.corr.at(i)
		if v > best {
			best, bestPos = v, i
		}
	}
	s.maxVal, s.maxPos = best, bestPos
}

// GetMaxCorr returns the strongest local maximum of the correlation ring
// within [SampleOut()-window*sps, SampleOut()-1], excluding both endpoints
// so only true interior extrema count. The correlation ring keeps only the
// last 2*len(reference) values, so a window wider than that reads
// wrapped-around ring entries rather than older correlations.
func (s *SymbolSync) GetMaxCorr(windowBits int, samplesPerBit float64) (Peak, bool) {
	out := s.SampleOut()
	span := int64(float64(windowBits) * samplesPerBit)
	lo := out - span
	hi := out - 1
	if lo < 1 {
		lo = 1
	}
	if hi <= lo {
		return Peak{}, false
	}
	best := -2.0
	bestPos := lo
	found := false
	for i := lo + 1; i < hi; i++ { // exclude both endpoints
		v := s.corr.at(i)
		if v > best {
			best, bestPos = v, i
			found = true
		}
	}
	if !found {
		return Peak{}, false
	}
	return Peak{Value: best, Pos: bestPos}, true
}
