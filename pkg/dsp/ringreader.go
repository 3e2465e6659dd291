package dsp

// ringReader adapts a SymbolSync's sample ring into a SampleReader
// starting at an arbitrary historical position, used by FrameAssembler's
// headcmp to re-slice header symbols at a candidate peak position without
// disturbing the live correlator.
type ringReader struct {
	s   *SymbolSync
	pos int64
}

// ReaderFrom returns a SampleReader that replays samples starting at the
// absolute index pos (must be >= the oldest index still resident in the
// ring, i.e. within SampleOut()-cap+1 .. SampleOut()).
func (s *SymbolSync) ReaderFrom(pos int64) SampleReader {
	return &ringReader{s: s, pos: pos}
}

func (r *ringReader) NextSample() (float64, error) {
	if r.pos > r.s.samples.sampleIn-1 {
		return 0, ErrEOF
	}
	x := r.s.samples.at(r.pos)
	r.pos++
	return x, nil
}
