// Package dsp implements the bit-synchronization and symbol-recovery stage
// of the radiosonde decode pipeline: a normalized matched-filter correlator
// (time-domain and FFT-accelerated variants), a running variance estimator,
// and an integrate-and-dump bit slicer with a Manchester variant. State
// lives on an owning Go value rather than process-wide globals.
package dsp
