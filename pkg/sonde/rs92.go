package sonde

import "github.com/sondedec/sondedec/pkg/gnss"

// RS92 layout offsets.
const (
	rs92PosFrameNb = 0x08
	rs92PosSondeID = 0x0C
	rs92PosCalData = 0x17
	rs92PosCalfreq = 0x1A
	rs92PosGPSTOW  = 0x48
	rs92PosAuxData = 0xC8

	rs92PosGPSPRN    = 0x4E // 12*5 bits packed into 8 bytes, little-endian
	rs92PosGPSStatus = 0x56 // 12 bytes, one per PRN slot
	rs92PosGPSData   = 0x62 // 12*8 bytes: 4-byte int-chips, 3-byte delta-chips (+1 spare)

	rs92ChipsPerSec = 1023000.0
	rs92L1          = 1575.42e6
)

// rs92DfChip is the pseudorange-per-chip scale factor: pseudorange is
// chips x -c/(chips_per_s*2^10).
var rs92DfChip = gnss.LightSpeed / (rs92ChipsPerSec * 1024.0)

// RS92Measurement is one decoded per-SV raw measurement: PRN plus
// integer/delta pseudo-chip counts, before the GNSSSolver converts them
// to a position fix.
type RS92Measurement struct {
	PRN         int
	Status      byte
	Pseudorange float64 // meters, chip-count term only; minPR is not included
	PseudoRate  float64 // m/s
}

// RS92Decoder holds per-run calibration state for RS92 frames. RS92
// never transmits a GPS week number itself; weekHint lets a caller that
// has loaded an almanac or RINEX navigation file supply the current
// week so GPSTOW can still be turned into a calendar date.
type RS92Decoder struct {
	cal     *CalibrationTable
	weekHint int

	// prnToggle carries the PRN-32 overflow disambiguation bit across
	// frames, the way the upstream decoder keeps it as persistent state
	// rather than re-deriving it fresh every frame.
	prnToggle int
}

func NewRS92Decoder() *RS92Decoder {
	return &RS92Decoder{cal: NewCalibrationTable(), prnToggle: 1}
}

// SetWeekHint records the GPS week a loaded ephemeris/almanac source
// reports, used to resolve GPSTOW to a calendar date.
func (d *RS92Decoder) SetWeekHint(week int) {
	d.weekHint = week
}

// unpackPRNBits unravels the 8-byte packed PRN block into a 64-bit
// little-endian bitstream: each of the 4 contained 16-bit words supplies
// the 5-bit PRN codes for 3 consecutive slots (15 bits) plus one spare
// overflow bit at bits[60+block], used by rs92PRN12 to detect PRN 32.
func unpackPRNBits(b []byte) [64]byte {
	var bits [64]byte
	for block := 0; block < 4; block++ {
		word := int(b[2*block]) | int(b[2*block+1])<<8
		for i := 0; i < 15; i++ {
			bits[15*block+i] = byte(word & 1)
			word >>= 1
		}
		bits[60+block] = byte(word & 1)
	}
	return bits
}

// rs92PRN12 decodes the 12 packed 5-bit PRN codes and flags the one slot
// (if any) that encodes PRN 32, which a plain 5-bit field cannot
// represent (5 bits only reach 31). PRN 32 is instead signaled by a
// zero PRN code alongside a non-zero status for that slot, confirmed by
// a spare bit borrowed from the neighboring slot's field. satStatus
// slots with no valid fix are zeroed outright.
func rs92PRN12(bits [64]byte, satStatus [12]byte) (prns [12]int, indPRN32 int) {
	for i := 0; i < 12; i++ {
		d := 1
		for j := 0; j < 5; j++ {
			if bits[5*i+j] != 0 {
				prns[i] += d
			}
			d <<= 1
		}
	}

	indPRN32 = 12
	for i := 0; i < 12; i++ {
		if prns[i] == 0 && satStatus[i]&0x0F != 0 {
			var overflow bool
			if i%3 == 2 {
				overflow = bits[60+i/3] != 0
			} else {
				overflow = bits[5*(i+1)] != 0
			}
			if overflow {
				prns[i] = 32
				indPRN32 = i
			}
		} else if satStatus[i]&0x0F == 0 {
			prns[i] = 0
		}
	}
	return prns, indPRN32
}

// resolvePRN32Next disambiguates the slot immediately after a detected
// PRN-32 overflow, which shares its 5-bit field with PRN 32's borrowed
// bit and so decodes ambiguously between two candidate PRNs differing
// by the toggle bit. It looks for the candidate's untoggled value
// already present elsewhere in the same frame's PRN set to decide which
// of the two applies, and flips the carried toggle bit when the other
// candidate matches instead.
func (d *RS92Decoder) resolvePRN32Next(prns []int, satStatus [12]byte, indPRN32 int) {
	if indPRN32 >= 12 || indPRN32%3 == 2 {
		return
	}
	next := indPRN32 + 1
	if satStatus[next]&0x0F == 0 || prns[next] <= 1 {
		return
	}

	candidate := prns[next] ^ d.prnToggle
	found := false
	for j := 0; j < indPRN32; j++ {
		if prns[j] == candidate && satStatus[j]&0x0F != 0 {
			found = true
			break
		}
	}
	if found {
		d.prnToggle ^= 1
	} else {
		for j := next + 1; j < 12; j++ {
			if prns[j] == candidate && satStatus[j]&0x0F != 0 {
				d.prnToggle ^= 1
				break
			}
		}
	}
	prns[next] ^= d.prnToggle
}

// rs92InvalidChipPattern reports the chip-count sentinels the receiver
// firmware emits for a slot it has no genuine pseudorange for: an
// all-ones or alternating-bits fill value, or a count outside the
// plausible pseudorange range.
func rs92InvalidChipPattern(chips uint32) bool {
	if chips == 0x7FFFFFFF || chips == 0x55555555 {
		return true
	}
	return chips > 0x10000000 && chips < 0xF0000000
}

// ParseMeasurements decodes the 12-slot GPS measurement block: PRN,
// status, pseudo-chip counts. Pseudorange holds only the chip-count term:
// the minimum pseudorange offset (minPR) is not read from the frame, and
// neither this function nor BuildSats adds it.
func (d *RS92Decoder) ParseMeasurements(frame []byte) []RS92Measurement {
	if len(frame) < rs92PosGPSData+12*8 || len(frame) < rs92PosGPSStatus+12 {
		return nil
	}
	bits := unpackPRNBits(frame[rs92PosGPSPRN : rs92PosGPSPRN+8])

	var satStatus [12]byte
	copy(satStatus[:], frame[rs92PosGPSStatus:rs92PosGPSStatus+12])

	prns, indPRN32 := rs92PRN12(bits, satStatus)
	d.resolvePRN32Next(prns[:], satStatus, indPRN32)

	var out []RS92Measurement
	for i, prn := range prns {
		if prn == 0 || satStatus[i]&0x0F != 0x0F {
			continue
		}
		base := rs92PosGPSData + i*8
		chipbytes := u32le(frame, base)
		deltabytes := int32(u24le(frame, base+4))
		if deltabytes&0x800000 != 0 {
			deltabytes |= ^int32(0xFFFFFF) // sign-extend the 24-bit field
		}
		if rs92InvalidChipPattern(chipbytes) {
			continue
		}

		pr := -float64(int32(chipbytes)) * rs92DfChip
		rate := -float64(deltabytes) * rs92DfChip / (rs92L1 / (rs92ChipsPerSec * 4))

		out = append(out, RS92Measurement{
			PRN:         prn,
			Status:      satStatus[i],
			Pseudorange: pr,
			PseudoRate:  rate,
		})
	}
	return out
}

// ParseRS92 decodes a post-channel-decode RS92 frame's frame-number,
// serial number, and time fields; GPS position itself is produced
// downstream by combining ParseMeasurements' output with the GNSSSolver,
// since RS92 (unlike RS41) never transmits an onboard-computed ECEF fix.
func (d *RS92Decoder) ParseRS92(frame []byte, rsErrors int) DecodedFrame {
	out := DecodedFrame{Sonde: NameRS92, RSErrors: rsErrors}
	if len(frame) <= rs92PosSondeID+8 {
		return out
	}

	out.FrameNb = int(u16le(frame, rs92PosFrameNb))
	out.SerialNo = sanitizeSerial(frame[rs92PosSondeID : rs92PosSondeID+8])

	if len(frame) > rs92PosGPSTOW+4 {
		tow := float64(u32le(frame, rs92PosGPSTOW)) / 1000.0
		out.GPSTOW = tow
		out.Weekday = int(tow/86400.0) % 7
		if d.weekHint > 0 {
			out.GPSWeek = d.weekHint
			out.Year, out.Month, out.Day, out.Hour, out.Minute, out.Second = gnss.BrokenDownTime(out.GPSWeek, tow)
		}
	}

	if len(frame) > rs92PosCalData+18 {
		slot := frame[rs92PosCalData]
		var row [16]byte
		copy(row[:], frame[rs92PosCalData+2:rs92PosCalData+18])
		d.cal.Observe(out.SerialNo, slot, row)
		if slot == 0x00 && len(frame) > rs92PosCalfreq+2 {
			freqRaw := u16le(frame, rs92PosCalfreq)
			out.FreqKHz = 400000 + 10*int(freqRaw)
		}
	}

	out.XData = ExtractXData(frame, rs92PosAuxData)
	out.Subtype = "RS92-SGP"
	return out
}

// BuildSats turns raw per-PRN measurements into the gnss.Sat slice
// GNSSSolver.Solve consumes, resolving each PRN's transmit-time
// position/velocity/clock state from the loaded ephemeris/almanac set.
// Measurements whose PRN has no matching ephemeris are skipped.
func BuildSats(meas []RS92Measurement, ephs map[int]gnss.Ephemeris, week int, tow float64) []gnss.Sat {
	sats := make([]gnss.Sat, 0, len(meas))
	for _, m := range meas {
		eph, ok := ephs[m.PRN]
		if !ok {
			continue
		}
		s := gnss.SatelliteState(week, tow, eph)
		s.Pseudorange = m.Pseudorange
		s.PseudoRate = m.PseudoRate
		s.Status = m.Status
		sats = append(sats, s)
	}
	return sats
}

// ApplyFix merges a resolved GNSSSolver fix into a DecodedFrame's
// position and velocity fields, converting the solver's ECEF output to
// the geodetic/NEU representation every other sonde parser reports.
func ApplyFix(out *DecodedFrame, fix gnss.Fix) {
	out.HasPosition = true
	out.Pos = gnss.ECEF2Elli(fix.Pos)
	out.VelH, out.Heading, out.VelV = ecefVelToNEU(fix.Pos, fix.Vel.X, fix.Vel.Y, fix.Vel.Z)
}

// DescrambleNGP reverses the RS92-NGP variant's additional XOR-key
// descrambling step: an 8-byte key derived from the calibration row at
// slot 0x01 XORs every byte of frame, from index 0, with key[i%8].
func DescrambleNGP(frame []byte, key [8]byte) {
	for i := range frame {
		frame[i] ^= key[i%8]
	}
}
