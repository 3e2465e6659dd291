// Package batch runs the decode pipeline concurrently over a set of
// input files, one pipeline instance per file: each pipeline instance
// is single-threaded and owns no shared mutable state, so running many
// in parallel needs nothing beyond a bounded worker pool.
package batch
