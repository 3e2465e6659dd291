// Package audio implements SampleSource: lazy, finite,
// non-restartable sequences of mono real samples in [-1,+1] read from
// RIFF/WAVE PCM, headerless raw PCM, interleaved float32 IQ, or a
// transport byte stream (file/serial/TCP/UDP), the last built around a
// byte-oriented transport abstraction.
package audio
