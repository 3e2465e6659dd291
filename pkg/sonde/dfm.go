package sonde

import (
	"fmt"
	"math"

	"github.com/sondedec/sondedec/pkg/channel"
)

// DFM bit-offsets within the 280-bit post-header frame: a 56-bit
// Hamming(8,4)-interleaved config block followed by two 104-bit
// Hamming(8,4)-interleaved data blocks.
const (
	dfmConfBit  = 0
	dfmConfBits = 56
	dfmConfL    = 7
	dfmDat1Bit  = 56
	dfmDataBits = 104
	dfmDataL    = 13
	dfmDat2Bit  = 160
)

// dfmSNChannel reassembles a 32-bit serial number transmitted as two
// 16-bit halves across consecutive config blocks, trusting the value
// only once the same number repeats on a following cycle.
type dfmSNChannel struct {
	half     [2]uint32
	seen     uint8
	lastSN   uint32
	haveLast bool
}

func (c *dfmSNChannel) observe(val20 uint32) (sn uint32, confirmed bool) {
	hl := val20 & 1
	c.half[hl] = (val20 >> 4) & 0xFFFF
	c.seen |= 1 << hl
	if c.seen != 3 {
		return 0, false
	}
	sn = c.half[0]<<16 | c.half[1]
	c.seen = 0
	confirmed = c.haveLast && c.lastSN == sn && sn != 0
	c.lastSN = sn
	c.haveLast = true
	return sn, confirmed
}

// DFMDecoder holds per-run state for DFM frames: the serial-number
// channels (confirmed across cycles), the five-slot ADC measurement
// array get_Temp/get_Temp2/get_Temp4 read from, and the last-known GPS
// fields a single radio frame's two DAT blocks never carry all at once
// (each DAT block reports one fr_id-tagged field; a full fix only
// exists once enough fr_id values have cycled through).
type DFMDecoder struct {
	meas    [5]float64
	snChans map[byte]*dfmSNChannel
	serial  string
	subtype string

	haveLatLon             bool
	lat, lon, velH, heading float64
	haveAlt                 bool
	alt, velV               float64
	haveDate                bool
	year, month, day        int
	hour, minute            int
}

func NewDFMDecoder() *DFMDecoder {
	return &DFMDecoder{snChans: map[byte]*dfmSNChannel{}}
}

// dfmSlice pulls l Hamming(8,4) codewords worth of bits starting at bit
// and returns the deinterleaved, error-corrected nibble stream plus
// HammingDecodeBlock's status: -1 when a codeword was uncorrectable (or
// the block runs past the end of bits), 0 when every codeword was clean,
// >0 when a codeword was corrected.
func dfmSlice(bits []byte, bit, nbits, l int) (nibbles []byte, errs int) {
	if bit+nbits > len(bits) {
		return nil, -1
	}
	block := bits[bit : bit+nbits]
	deint := channel.Deinterleave(block, l)
	return channel.HammingDecodeBlock(deint, l)
}

// nibblesToUint packs a run of 4-bit nibbles MSB-first into an integer,
// used for the conf block's nibble-aligned fields (conf_id, meas24, the
// SN channel halves).
func nibblesToUint(nibbles []byte) uint32 {
	var v uint32
	for _, n := range nibbles {
		v = v<<4 | uint32(n)
	}
	return v
}

// nibblesToBits expands nibbles back to individual bits, MSB first per
// nibble, so DAT-block fields that are not nibble-aligned (dat_out's
// tag/std/min, each a few bits wide) can be read with plain bit offsets
// exactly as bits2val does over the raw bit array.
func nibblesToBits(nibbles []byte) []byte {
	bits := make([]byte, len(nibbles)*4)
	for i, n := range nibbles {
		for b := 0; b < 4; b++ {
			bits[i*4+b] = (n >> (3 - b)) & 1
		}
	}
	return bits
}

func bits2val(bits []byte, start, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		idx := start + i
		var bit byte
		if idx < len(bits) {
			bit = bits[idx]
		}
		v = v<<1 | uint32(bit)
	}
	return v
}

// fl24 decodes the DFM-09 (STM32) float24 encoding: a 4-bit binary
// exponent followed by a 20-bit mantissa, value = mantissa / 2^exponent.
func fl24(d uint32) float64 {
	p := (d >> 20) & 0xF
	val := d & 0xFFFFF
	return float64(val) / float64(uint32(1)<<p)
}

// getTemp is the primary NTC-thermistor conversion (EPCOS
// B57540G0502, R25=5k, B=3260K), solving R from the gain established by
// the Rf=220k reference channel and Rs bias channel, then the usual
// 1/T = 1/T0 + 1/B*ln(R/R0) relation.
func getTemp(meas [5]float64) float64 {
	const (
		b0 = 3260.0
		t0 = 25 + 273.15
		r0 = 5.0e3
		rf = 220e3
	)
	if meas[0]*meas[3]*meas[4] == 0 {
		return 0
	}
	g := meas[4] / rf
	r := (meas[0] - meas[3]) / g
	if r <= 0 {
		return 0
	}
	t := 1 / (1/t0 + 1/b0*math.Log(r/r0))
	return t - 273.15
}

// getTemp2 is the alternate conversion that derives the gain and offset
// from the two reference channels directly instead of assuming Rs is
// one of the two known dfm6/dfm9 bias resistor values.
func getTemp2(meas [5]float64) float64 {
	const (
		b0  = 3260.0
		t0  = 25 + 273.15
		r0  = 5.0e3
		rf2 = 220e3
	)
	f, f1, f2 := meas[0], meas[3], meas[4]
	if f2 == f1 {
		return 0
	}
	gO := f2 / rf2
	rsO := f1 / gO
	rf1 := rsO
	switch {
	case rsO > 8e3 && rsO < 12e3:
		rf1 = 10e3
	case rsO > 18e3 && rsO < 22e3:
		rf1 = 20e3
	}
	g := (f2 - f1) / (rf2 - rf1)
	r := (f - f1) / g
	if r <= 0 {
		return 0
	}
	t := 1 / (1/t0 + 1/b0*math.Log(r/r0))
	return t - 273.15
}

// getTemp4 replaces the single-B-coefficient Steinhart-Hart fit with a
// cubic polynomial fit of the thermistor's published R/T table.
func getTemp4(meas [5]float64) float64 {
	const (
		p0 = 1.09698417e-03
		p1 = 2.39564629e-04
		p2 = 2.48821437e-06
		p3 = 5.84354921e-08
		rf = 220e3
	)
	if meas[0]*meas[3]*meas[4] == 0 {
		return 0
	}
	g := meas[4] / rf
	r := (meas[0] - meas[3]) / g
	if r <= 0 {
		return 0
	}
	lr := math.Log(r)
	t := 1 / (p0 + p1*lr + p2*lr*lr + p3*lr*lr*lr)
	return t - 273.15
}

// processConf updates meas[] and the SN channels from one decoded
// 7-nibble config block, per dat_out/conf_out's conf_id dispatch:
// conf_id 0..4 selects a slot in the float24 measurement array, while
// 0x7/0xA/0xC/0xD each carry half of a two-cycle serial number.
func (d *DFMDecoder) processConf(nibbles []byte) {
	if len(nibbles) < 7 {
		return
	}
	confID := nibbles[0]
	if confID <= 4 {
		d.meas[confID] = fl24(nibblesToUint(nibbles[1:7]))
		return
	}
	switch confID {
	case 0x7, 0xA, 0xC, 0xD:
		val20 := nibblesToUint(nibbles[2:7])
		ch, ok := d.snChans[confID]
		if !ok {
			ch = &dfmSNChannel{}
			d.snChans[confID] = ch
		}
		sn, confirmed := ch.observe(val20)
		if !confirmed {
			return
		}
		d.serial = fmt.Sprintf("%d", sn)
		switch confID {
		case 0xA:
			d.subtype = "DFM-09"
		case 0xC, 0xD:
			d.subtype = "DFM-17"
		case 0x7:
			d.subtype = "PS-15"
		}
	}
}

// processDat folds one decoded 13-nibble DAT block into the decoder's
// last-known GPS state, per dat_out's fr_id-tagged field layout: fr_id 0
// is the frame number, 1 the UTC seconds-of-day, 2/3/4 lat+horizontal
// velocity / lon+heading / alt+vertical velocity, and 8 the broken-down
// UTC date plus hour/minute (DFM transmits calendar time directly, with
// no GPS week field at all).
func (d *DFMDecoder) processDat(nibbles []byte, out *DecodedFrame) {
	if len(nibbles) < 13 {
		return
	}
	bits := nibblesToBits(nibbles)
	frID := bits2val(bits, 48, 4)

	switch frID {
	case 0:
		out.FrameNb = int(bits2val(bits, 24, 8))
	case 1:
		msek := bits2val(bits, 32, 16)
		out.Second = float64(msek) / 1000.0
	case 2:
		d.lat = float64(int32(bits2val(bits, 0, 32))) / 1e7
		d.velH = float64(int16(bits2val(bits, 32, 16))) / 1e2
	case 3:
		d.lon = float64(int32(bits2val(bits, 0, 32))) / 1e7
		d.heading = float64(bits2val(bits, 32, 16)&0xFFFF) / 1e2
		d.haveLatLon = true
	case 4:
		d.alt = float64(int32(bits2val(bits, 0, 32))) / 1e2
		d.velV = float64(int16(bits2val(bits, 32, 16))) / 1e2
		d.haveAlt = true
	case 8:
		d.year = int(bits2val(bits, 0, 12))
		d.month = int(bits2val(bits, 12, 4))
		d.day = int(bits2val(bits, 16, 5))
		d.hour = int(bits2val(bits, 21, 5))
		d.minute = int(bits2val(bits, 26, 6))
		d.haveDate = true
	}
}

// ParseDFM decodes one post-channel-decode DFM frame. frame is the
// 35-byte (280-bit) packed buffer the FrameAssembler emits for
// frame.DFMProfile; it is unpacked back to individual bits here because
// DFM's Hamming(8,4) interleaving operates at bit, not byte, granularity.
//
// A single radio frame carries one CONF block and two DAT blocks, each
// reporting only one fr_id-tagged field; ParseDFM folds each block's
// contribution into persistent decoder state and reports the
// most-recently-known values every call, the way dat_out's gpx struct
// accumulates across frames rather than resetting each call.
func (d *DFMDecoder) ParseDFM(frame []byte, rsErrors int) DecodedFrame {
	out := DecodedFrame{Sonde: NameDFM, RSErrors: rsErrors}
	bits := unpackBitsMSB(frame)
	if len(bits) < dfmDat2Bit+dfmDataBits {
		return out
	}

	confNibbles, confErrs := dfmSlice(bits, dfmConfBit, dfmConfBits, dfmConfL)
	dat1Nibbles, dat1Errs := dfmSlice(bits, dfmDat1Bit, dfmDataBits, dfmDataL)
	dat2Nibbles, dat2Errs := dfmSlice(bits, dfmDat2Bit, dfmDataBits, dfmDataL)

	worst := confErrs
	if dat1Errs > worst {
		worst = dat1Errs
	}
	if dat2Errs > worst {
		worst = dat2Errs
	}
	if confErrs < 0 || dat1Errs < 0 || dat2Errs < 0 {
		out.RSErrors = -1
		return out
	}
	out.RSErrors = worst

	if confErrs == 0 {
		d.processConf(confNibbles)
	}
	if dat1Errs == 0 {
		d.processDat(dat1Nibbles, &out)
	}
	if dat2Errs == 0 {
		d.processDat(dat2Nibbles, &out)
	}

	out.SerialNo = d.serial

	if d.haveLatLon && d.haveAlt {
		out.HasPosition = true
		out.Pos.Lat = d.lat
		out.Pos.Lon = d.lon
		out.Pos.Alt = d.alt
		out.VelH = d.velH
		out.Heading = d.heading
		out.VelV = d.velV
	}

	if d.haveDate {
		out.Year, out.Month, out.Day = d.year, d.month, d.day
		out.Hour, out.Minute = d.hour, d.minute
	}

	if d.meas[0] != 0 && d.meas[3] != 0 && d.meas[4] != 0 {
		out.HasPTU = true
		out.Temperature = getTemp(d.meas)
		// getTemp2/getTemp4 are the two alternate curve fits.
		// ParseDFM does not call them, so Temperature always holds
		// getTemp's result; both are unexported and callable only
		// from inside package sonde.
	}

	out.CRCStatus = 0
	if confErrs == 0 {
		out.CRCStatus |= uint32(StatusAux)
	}
	if dat1Errs == 0 {
		out.CRCStatus |= uint32(StatusGPS1)
	}
	if dat2Errs == 0 {
		out.CRCStatus |= uint32(StatusGPS2)
	}
	if d.haveLatLon && d.haveAlt {
		out.CRCStatus |= uint32(StatusGPS3)
	}

	if d.subtype != "" {
		out.Subtype = d.subtype
	} else {
		out.Subtype = "DFM-09"
	}

	return out
}
