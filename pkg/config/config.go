// Package config defines the decoder's run configuration and validates
// it with go-playground/validator/v10 struct tags instead of hand-rolled
// field checks.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// VelocityMode selects how ground velocity is derived: `--vel`,
// `--vel1`, or `--vel2`.
type VelocityMode string

const (
	VelocityLSQ      VelocityMode = "lsq"      // linear least-squares over a short window
	VelocitySingle   VelocityMode = "single"   // single-timestep differencing
	VelocityDoppler  VelocityMode = "doppler"  // raw Doppler measurement, where the sonde transmits one
)

// ECCMode selects the Reed-Solomon decode strategy: `--ecc` (single
// pass) or `--ecc2` (two-pass repair).
type ECCMode string

const (
	ECCSinglePass ECCMode = "single"
	ECCTwoPass    ECCMode = "double"
)

// Config is the decoder's full run configuration: one value covers both
// the ambient CLI surface (input/output selection, logging) and the
// domain-specific decode knobs.
type Config struct {
	// Input selection. InputPath is one input file; cmd/sondedec also
	// accepts further files as positional arguments for batch mode, so
	// Config itself does not require InputPath to be set.
	InputPath   string
	RawPCM      bool
	PCMBits     int `validate:"omitempty,oneof=8 16"`
	PCMChannels int `validate:"omitempty,min=1"`
	SampleRate  int `validate:"omitempty,min=1"`
	IQ          bool
	Channel2    bool // --ch2: select the right audio channel

	// Ephemeris/almanac, optional.
	SEMFile   string
	RINEXFile string

	// Output selection, mutually exclusive.
	JSON bool
	Raw  bool // --raw: emit hex frames only, skip decode

	// Decode knobs.
	ECC       ECCMode      `validate:"omitempty,oneof=single double"`
	CRCReport bool
	Velocity  VelocityMode `validate:"omitempty,oneof=lsq single doppler"`
	Invert    bool // -i
	BitShift  int  `validate:"min=-4,max=4"` // -d shift
	Threshold float64 `validate:"omitempty,gte=0,lte=1"` // --ths

	// Batch mode.
	Workers int `validate:"omitempty,min=1"`

	// Logging.
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`
}

// Default returns a Config with the decoder's baseline defaults applied:
// no inversion, no bit-shift, single-pass RS, LSQ velocity, 4 workers.
func Default() Config {
	return Config{
		ECC:      ECCSinglePass,
		Velocity: VelocityLSQ,
		Workers:  4,
		LogLevel: "info",
	}
}

// Validate runs struct-tag validation and returns a wrapped error
// listing every failing field, not just the first.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.JSON && c.Raw {
		return fmt.Errorf("config: --json and --raw are mutually exclusive")
	}
	return nil
}
