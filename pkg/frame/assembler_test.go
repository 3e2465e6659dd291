package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// pushBits writes samplesPerBit +-1 samples per header bit directly into
// the assembler's SymbolSync ring, the same raw-sample shape BuildReference
// uses for ShapeRect, so headcmp's re-slice sees an exact (or deliberately
// corrupted) copy of the profile's header pattern. It returns the number of
// samples pushed, so callers can track the absolute ring position
// themselves without reaching into dsp's unexported ring state.
func pushBits(a *Assembler, bits string, spb int) int64 {
	var n int64
	for _, c := range bits {
		v := -1.0
		if c == '1' {
			v = 1.0
		}
		for k := 0; k < spb; k++ {
			a.ss.PushSample(v)
			n++
		}
	}
	return n
}

func testProfile() Profile {
	return Profile{
		Kind:             M10, // arbitrary; DataLen==MaxLen so the RS41 heuristic never fires
		HeaderBits:       "1100101101001",
		Baud:             1200,
		SymbolLen:        1,
		HeaderTolerance:  1,
		DataLen:          4,
		MaxLen:           4,
		ThresholdDefault: 0.5,
	}
}

func TestHeadcmpExactMatchZeroErrors(t *testing.T) {
	profile := testProfile()
	a := NewAssembler(profile, 4800, 0, false, 0) // sampleRate/Baud = 4

	pos := pushBits(a, "000000000000000000", 4) // leading silence, multiple header-lengths
	pushBits(a, profile.HeaderBits, 4)

	errs := a.headcmp(pos)
	require.Equal(t, 0, errs)
}

func TestHeadcmpCountsFlippedBits(t *testing.T) {
	profile := testProfile()
	a := NewAssembler(profile, 4800, 0, false, 0)

	pos := pushBits(a, "000000000000000000", 4)
	corrupted := "0" + profile.HeaderBits[1:] // flip the leading bit (header starts '1')
	pushBits(a, corrupted, 4)

	errs := a.headcmp(pos)
	require.Equal(t, 1, errs)
}

func TestHeadcmpInvertFlipsDecision(t *testing.T) {
	profile := testProfile()
	a := NewAssembler(profile, 4800, 0, true, 0) // invert polarity

	pos := pushBits(a, "000000000000000000", 4)
	pushBits(a, profile.HeaderBits, 4)

	// every bit's hard decision flips under inv=true, so comparing against
	// the un-inverted header pattern now mismatches on every symbol.
	errs := a.headcmp(pos)
	require.Equal(t, len(profile.HeaderBits), errs)
}

func TestNewAssemblerDerivesSamplesPerBitFromSampleRate(t *testing.T) {
	profile := RS41Profile
	a := NewAssembler(profile, 9600, 0, false, 0)
	require.InDelta(t, 2.0, a.profile.SamplesPerBit, 1e-9)
}

func TestProfilesTableHeaderTolerances(t *testing.T) {
	require.Equal(t, 1, RS41Profile.HeaderTolerance)
	require.Equal(t, 1, RS92Profile.HeaderTolerance)
	require.Equal(t, 3, LMS6Profile.HeaderTolerance)
	require.Equal(t, 1, DFMProfile.HeaderTolerance)
	require.Equal(t, 1, M10Profile.HeaderTolerance)
}
