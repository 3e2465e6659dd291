package dsp

// ring is a fixed-capacity circular buffer of real samples, exclusively
// owned by SymbolSync. sampleIn is the monotonically increasing count of
// samples ever written; reads are addressed relative to it so callers
// never touch the modular index directly.
type ring struct {
	buf      []float64
	sampleIn int64
}

func newRing(size int) *ring {
	return &ring{buf: make([]float64, size)}
}

func (r *ring) cap() int { return len(r.buf) }

// put appends one new sample, advancing sampleIn.
func (r *ring) put(x float64) {
	r.buf[int(r.sampleIn)%len(r.buf)] = x
	r.sampleIn++
}

// at returns the sample written at absolute index idx (idx <= latest
// written index, idx > sampleIn-cap). Callers must only request indices
// known to still be resident; this invariant holds once sampleIn >= cap.
func (r *ring) at(idx int64) float64 {
	return r.buf[((idx%int64(len(r.buf)))+int64(len(r.buf)))%int64(len(r.buf))]
}

// filled reports whether the ring has accumulated at least one full
// capacity's worth of samples, i.e. all "at" reads within the last cap
// indices are valid.
func (r *ring) filled() bool { return r.sampleIn >= int64(len(r.buf)) }
