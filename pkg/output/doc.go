// Package output formats decoded telemetry frames for the two mutually
// exclusive external representations the CLI exposes: fixed-column text
// and line-delimited JSON, plus a supplemented NMEA GGA/RMC emitter for
// feeding external ground-tracking tools.
package output
