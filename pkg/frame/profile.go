// Package frame implements the FrameAssembler state machine:
// Searching/HeaderCheck/Reading/Emit driven by SymbolSync correlation
// peaks and per-sonde framing rules. Rather than per-sonde function
// pointers, each sonde is one value of a small SondeKind/Profile
// tagged-variant set.
package frame

// SondeKind identifies one of the five supported radiosonde families.
type SondeKind int

const (
	RS41 SondeKind = iota
	RS92
	DFM
	LMS6
	M10
)

func (k SondeKind) String() string {
	switch k {
	case RS41:
		return "RS41"
	case RS92:
		return "RS92"
	case DFM:
		return "DFM"
	case LMS6:
		return "LMS6"
	case M10:
		return "M10"
	default:
		return "unknown"
	}
}

// Profile bundles one sonde's framing rules: header pattern and
// tolerance, symbol shaping, bit order, whitening mask, and frame
// length bounds.
type Profile struct {
	Kind SondeKind

	// HeaderBits is the raw (pre-decode) header bit pattern used both to
	// build the matched-filter reference and to headcmp-verify a
	// candidate peak.
	HeaderBits string

	Baud float64

	// SamplesPerBit is derived at assembler construction time from the
	// input's actual sample rate (sampleRate / Baud); it is left zero on
	// the static Profile values below and populated by NewAssembler.
	SamplesPerBit float64

	// SymbolLen is 1 for a plain NRZ bit, 2 for a Manchester pair.
	SymbolLen int

	// MSBFirst packs decoded bits MSB-first (M10); all other sondes are
	// LSB-first.
	MSBFirst bool

	// HeaderTolerance is the maximum header bit-error count accepted (1
	// for RS92/RS41, 3 for LMS6, 1 for DFM/M10). A count of 2 or 3 first
	// triggers a one-sample re-slice retry, and the lower count is the
	// one compared against this tolerance.
	HeaderTolerance int

	// DescrambleMask XOR-whitens decoded bytes (RS41/RS92); nil for
	// sondes that transmit unwhitened data.
	DescrambleMask []byte

	// DataLen is the standard post-header frame length in bytes;
	// MaxLen additionally allows for a variable trailing xdata block.
	DataLen int
	MaxLen  int

	// ThresholdDefault is the default correlation-peak acceptance
	// threshold, per sonde, typically in [0.6,0.8].
	ThresholdDefault float64
}

// rs41Mask is the Vaisala data-whitening LFSR key.
var rs41Mask = []byte{
	0x96, 0x83, 0x3E, 0x51, 0xB1, 0x49, 0x08, 0x98,
	0x32, 0x05, 0x59, 0x0E, 0xF9, 0x44, 0xC6, 0x26,
	0x21, 0x60, 0xC2, 0xEA, 0x79, 0x5D, 0x6D, 0xA1,
	0x54, 0x69, 0x47, 0x0C, 0xDC, 0xE8, 0x5C, 0xF1,
	0xF7, 0x76, 0x82, 0x7F, 0x07, 0x99, 0xA2, 0x2C,
	0x93, 0x7C, 0x30, 0x63, 0xF5, 0x10, 0x2E, 0x61,
	0xD0, 0xBC, 0xB4, 0xB6, 0x06, 0xAA, 0xF4, 0x23,
	0x78, 0x6E, 0x3B, 0xAE, 0xBF, 0x7B, 0x4C, 0xC1,
}

// rs92Mask is the RS92 whitening key: the first 64 bytes of rs41Mask,
// byte-for-byte the same LFSR sequence as RS41's, so it is reused
// directly rather than duplicated.
var rs92Mask = rs41Mask

// RS41Profile is Vaisala RS(255,231)'s framing: a 64-bit fixed header,
// a 320-byte data block, and up to 198 bytes of extended data.
var RS41Profile = Profile{
	Kind:             RS41,
	HeaderBits:       "0000100001101101010100111000100001000100011010010100100000011111",
	Baud:             4800,
	SymbolLen:        1,
	HeaderTolerance:  1,
	DescrambleMask:   rs41Mask,
	DataLen:          320,
	MaxLen:           320 + 198,
	ThresholdDefault: 0.65,
}

// RS92Profile is Vaisala RS92's framing: Manchester-coded, whitened with
// the same key as RS41, fixed frame length.
var RS92Profile = Profile{
	Kind:             RS92,
	HeaderBits:       "10101010101010101010101010100110",
	Baud:             4800,
	SymbolLen:        2,
	HeaderTolerance:  1,
	DescrambleMask:   rs92Mask,
	DataLen:          240,
	MaxLen:           240,
	ThresholdDefault: 0.7,
}

// DFMProfile is GRAW DFM's framing: a 32-bit header, 280-bit (35-byte)
// frames, Manchester pairing, no XOR whitening.
var DFMProfile = Profile{
	Kind:             DFM,
	HeaderBits:       "10011010100110010101101001010101",
	Baud:             2500,
	SymbolLen:        2,
	MSBFirst:         true,
	HeaderTolerance:  1,
	DataLen:          35,
	MaxLen:           35,
	ThresholdDefault: 0.6,
}

// LMS6Profile is Lockheed Martin LMS6's framing: a fixed header,
// 300-byte frames, convolutionally coded (handled by pkg/channel, not
// whitening here).
var LMS6Profile = Profile{
	Kind:             LMS6,
	HeaderBits:       "0101011000001000000111001001011100011010101001110011110100111110",
	Baud:             4797.7,
	SymbolLen:        1,
	HeaderTolerance:  3,
	DataLen:          300,
	MaxLen:           300,
	ThresholdDefault: 0.65,
}

// M10Profile is Meisei M10's framing: a fixed header, 102-byte frames,
// MSB-first packing, Manchester pairing, no XOR whitening (checkM10
// replaces CRC-16 for block verification, handled in pkg/sonde).
var M10Profile = Profile{
	Kind:             M10,
	HeaderBits:       "10011001100110010100110010011001",
	Baud:             9616,
	SymbolLen:        2,
	MSBFirst:         true,
	HeaderTolerance:  1,
	DataLen:          102,
	MaxLen:           102,
	ThresholdDefault: 0.6,
}

// Profiles lists all five built-in profiles, keyed by SondeKind.
var Profiles = map[SondeKind]Profile{
	RS41: RS41Profile,
	RS92: RS92Profile,
	DFM:  DFMProfile,
	LMS6: LMS6Profile,
	M10:  M10Profile,
}
