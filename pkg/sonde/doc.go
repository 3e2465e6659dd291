// Package sonde implements the per-sonde FrameParser family:
// block-CRC verification, field extraction, calibration-table
// bookkeeping, and the per-sonde telemetry-record assembly for Vaisala
// RS41/RS92, GRAW DFM, Lockheed Martin LMS6, and Meisei M10.
package sonde
