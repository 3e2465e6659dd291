package frame

import (
	"errors"

	"github.com/sondedec/sondedec/pkg/audio"
	"github.com/sondedec/sondedec/pkg/dsp"
)

// ErrEOF propagates sample-source exhaustion: an in-progress frame shorter
// than profile.DataLen is discarded; one that has reached DataLen bytes is
// still returned.
var ErrEOF = errors.New("frame: sample source exhausted")

// state is the FrameAssembler's four-state machine: Searching,
// HeaderCheck, Reading, and (implicit) Emit.
type state int

const (
	stateSearching state = iota
	stateHeaderCheck
	stateReading
)

// Frame is one assembled byte frame plus the sample index of the header
// peak that produced it; across a decode run, SampleIdx is monotonic.
type Frame struct {
	Bytes      []byte
	SampleIdx  int64
	HeaderErrs int
}

// Assembler drives one sonde profile's Searching/HeaderCheck/Reading/Emit
// cycle over a SampleSource, owning its SymbolSync and BitSlicer for the
// life of the decode run: single-threaded, synchronous, exclusively
// owned ring buffers.
type Assembler struct {
	profile   Profile
	ss        *dsp.SymbolSync
	threshold float64
	invert    bool
	bitOffset int

	lastAcceptedPeak int64
	state            state
}

// teeSource feeds every sample pulled from the underlying SampleSource
// into the SymbolSync's ring as well, so the correlator stays current
// while the BitSlicer consumes symbols during Reading/HeaderCheck.
type teeSource struct {
	src audio.SampleSource
	ss  *dsp.SymbolSync
}

func (t *teeSource) NextSample() (float64, error) {
	x, err := t.src.NextSample()
	if err != nil {
		return 0, dsp.ErrEOF
	}
	t.ss.PushSample(x)
	return x, nil
}

// NewAssembler constructs an Assembler for profile at the given audio
// sample rate, with threshold overriding profile.ThresholdDefault when
// threshold > 0 (the --ths CLI flag), invert flipping demodulator
// polarity (-i) and bitOffset delaying the bit-sampling phase by a fixed
// number of samples (-d); a negative bitOffset has no effect, since the
// bit slicer only skips samples forward. samplesPerBit is derived here
// (sampleRate / profile.Baud) rather than stored statically on Profile,
// since the same sonde profile must work at whatever rate the input
// file or stream actually carries.
func NewAssembler(profile Profile, sampleRate int, threshold float64, invert bool, bitOffset int) *Assembler {
	if threshold <= 0 {
		threshold = profile.ThresholdDefault
	}
	profile.SamplesPerBit = float64(sampleRate) / profile.Baud
	match := dsp.BuildReference(profile.HeaderBits, profile.SamplesPerBit, dsp.ShapeRect)
	return &Assembler{
		profile:          profile,
		ss:               dsp.New(match, profile.SamplesPerBit),
		threshold:        threshold,
		invert:           invert,
		bitOffset:        bitOffset,
		lastAcceptedPeak: -1,
	}
}

// headcmp re-slices the header symbols at pos against the profile's raw
// header bit pattern and counts bit errors.
func (a *Assembler) headcmp(pos int64) int {
	reader := a.ss.ReaderFrom(pos)
	bs := dsp.NewBitSlicer(reader, a.profile.SamplesPerBit)
	errs := 0
	for i := 0; i < len(a.profile.HeaderBits); i++ {
		ofs := 0
		if i == 0 {
			ofs = a.bitOffset
		}
		bit, err := bs.ReadBit(a.profile.SymbolLen, i == 0, a.invert, ofs)
		if err != nil {
			return len(a.profile.HeaderBits) // EOF mid-header: total mismatch
		}
		want := 0
		if a.profile.HeaderBits[i] == '1' {
			want = 1
		}
		if bit != want {
			errs++
		}
	}
	return errs
}

// NextFrame runs the state machine forward until one frame is emitted or
// the sample source is exhausted. It is the Assembler's only exported
// entry point: callers loop calling NextFrame until ErrEOF.
func (a *Assembler) NextFrame(src audio.SampleSource) (Frame, error) {
	tee := &teeSource{src: src, ss: a.ss}

	for {
		x, err := src.NextSample()
		if err != nil {
			return Frame{}, ErrEOF
		}
		a.ss.PushSample(x)

		peak, ok := a.ss.GetMaxCorr(len(a.profile.HeaderBits), a.profile.SamplesPerBit)
		if !ok || peak.Value < a.threshold || peak.Pos <= a.lastAcceptedPeak {
			continue
		}

		errs := a.headcmp(peak.Pos)
		bestPos, bestErrs := peak.Pos, errs
		if errs >= 2 && errs <= 3 {
			// +-1 sample retry's header-tolerance policy.
			for _, p := range []int64{peak.Pos + 1, peak.Pos - 1} {
				if retryErrs := a.headcmp(p); retryErrs < bestErrs {
					bestPos, bestErrs = p, retryErrs
				}
			}
		}
		if bestErrs > a.profile.HeaderTolerance {
			continue // back to Searching
		}

		a.lastAcceptedPeak = bestPos
		frameBytes, err := a.readFrame(tee, bestPos)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Bytes: frameBytes, SampleIdx: bestPos, HeaderErrs: bestErrs}, nil
	}
}

// readFrame runs the Reading state: packs bits into bytes (LSB-first, or
// MSB-first for M10), applies XOR-mask descrambling where the profile
// specifies one, and detects the RS41 short/long-frame truncation
// heuristic.
func (a *Assembler) readFrame(src dsp.SampleReader, headerPos int64) ([]byte, error) {
	bs := dsp.NewBitSlicer(src, a.profile.SamplesPerBit)
	// headcmp already consumed the header's own symbols from a ring
	// reader; this bit slicer starts fresh immediately after the header,
	// so skip past the header length in symbol units first.
	for i := 0; i < len(a.profile.HeaderBits); i++ {
		ofs := 0
		if i == 0 {
			ofs = a.bitOffset
		}
		if _, err := bs.ReadBit(a.profile.SymbolLen, i == 0, a.invert, ofs); err != nil {
			return nil, ErrEOF
		}
	}

	maxLen := a.profile.MaxLen
	if maxLen <= 0 {
		maxLen = a.profile.DataLen
	}
	out := make([]byte, 0, maxLen)

	lowVarRun := 0
	for len(out) < maxLen {
		var b byte
		for bi := 0; bi < 8; bi++ {
			bit, err := bs.ReadBit(a.profile.SymbolLen, false, a.invert, 0)
			if err != nil {
				if len(out) >= a.profile.DataLen {
					return a.finish(out), nil
				}
				return nil, ErrEOF
			}
			if a.profile.MSBFirst {
				b = b<<1 | byte(bit)
			} else {
				b = b>>1 | byte(bit)<<7
			}
		}

		if a.profile.DescrambleMask != nil {
			b ^= a.profile.DescrambleMask[len(out)%len(a.profile.DescrambleMask)]
		}
		out = append(out, b)

		// RS41 long/short-frame heuristic: four consecutive bytes of
		// collapsed variance truncate the frame early.
		if a.profile.Kind == RS41 && len(out) > a.profile.DataLen {
			_, v := a.ss.Variance()
			if v < rs41VarianceCollapseThreshold {
				lowVarRun++
				if lowVarRun >= 4 {
					return a.finish(out), nil
				}
			} else {
				lowVarRun = 0
			}
		}
	}
	return a.finish(out), nil
}

// rs41VarianceCollapseThreshold is the empirical threshold the long/short
// RS41 frame heuristic compares against: readFrame tests the absolute
// running sample variance (SymbolSync.Variance) directly against it, not
// a ratio of that variance to the signal's variance. It is an unexported
// package variable; no Config field or flag sets it.
var rs41VarianceCollapseThreshold = 0.0025

func (a *Assembler) finish(out []byte) []byte {
	return out
}
