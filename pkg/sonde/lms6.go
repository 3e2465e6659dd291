package sonde

import (
	"encoding/binary"
	"math"

	"github.com/sondedec/sondedec/pkg/channel"
)

// LMS6 block layout: a 5-byte sync pattern precedes one RS(255,223)
// CCSDS codeword (223 payload bytes plus 32 parity bytes); decoded
// payload fields sit at a further 4-byte offset beyond that, so the
// position constants below are relative to the payload start, not the
// sync pattern.
const (
	lms6SyncLen = 5
	lms6FrmLen  = 223
	lms6ParLen  = 32
	lms6Ofs     = 4

	lms6PosSondeSN = lms6Ofs + 0x00
	lms6PosFrameNb = lms6Ofs + 0x04
	lms6PosGPSTOW  = lms6Ofs + 0x06
	lms6PosGPSLat  = lms6Ofs + 0x0E
	lms6PosGPSLon  = lms6Ofs + 0x12
	lms6PosGPSAlt  = lms6Ofs + 0x16
	lms6PosGPSvO   = lms6Ofs + 0x1A
	lms6PosGPSvN   = lms6Ofs + 0x1C
	lms6PosGPSvV   = lms6Ofs + 0x1E
)

// LMS6Decoder wraps the rate-1/2 K=7 Viterbi decoder and the RS(255,223)
// CCSDS code LMS6 frames use in place of Vaisala's RS(255,231)
// parameterization.
type LMS6Decoder struct {
	vit *channel.Viterbi
	rs  *channel.RSCode
}

func NewLMS6Decoder() *LMS6Decoder {
	return &LMS6Decoder{
		vit: channel.NewViterbi(),
		rs:  channel.NewRS255CCSDS(),
	}
}

// DecodeRawBits runs the soft-decision Viterbi decoder over a raw
// (rate-1/2, +-1 soft-symbol) bit stream, producing the decoded
// information bits packed MSB-first into bytes (unpackBitsMSB reverses
// the packing). The caller is
// responsible for capturing twice profile.DataLen*8 raw soft symbols per
// frame, since the FrameAssembler's generic bit slicer does not itself
// know about the convolutional code rate.
func (d *LMS6Decoder) DecodeRawBits(softSymbols []float64) []byte {
	bits := d.vit.DecodeSoft(softSymbols)
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// ParseLMS6 decodes one already Viterbi-decoded LMS6 frame: frame is
// expected to begin with the SYNC_LEN sync bytes followed by one
// RS(255,223) CCSDS codeword.
func (d *LMS6Decoder) ParseLMS6(frame []byte, rsErrorsIn int) DecodedFrame {
	out := DecodedFrame{Sonde: NameLMS6}

	if len(frame) < lms6SyncLen+lms6FrmLen+lms6ParLen {
		out.RSErrors = -1
		return out
	}
	codeword := make([]byte, lms6FrmLen+lms6ParLen)
	copy(codeword, frame[lms6SyncLen:lms6SyncLen+lms6FrmLen+lms6ParLen])

	_, rsErrors := d.rs.Decode(codeword)
	out.RSErrors = rsErrors
	if rsErrors < 0 {
		return out
	}

	// RSCode.Decode expects a systematic codeword with parity first
	// (cw[0:R]) and data last (cw[R:N]); the payload fields start after
	// the parity bytes.
	payload := codeword[lms6ParLen:]
	if len(payload) <= lms6PosGPSvV+2 {
		return out
	}

	out.FrameNb = int(binary.BigEndian.Uint16(payload[lms6PosFrameNb : lms6PosFrameNb+2]))
	out.SerialNo = sanitizeSerial(payload[lms6PosSondeSN : lms6PosSondeSN+4])

	tow := float64(binary.BigEndian.Uint32(payload[lms6PosGPSTOW:lms6PosGPSTOW+4])) / 1000.0
	out.GPSTOW = tow
	out.Weekday = int(tow/86400.0) % 7

	lat := float64(int32(binary.BigEndian.Uint32(payload[lms6PosGPSLat:lms6PosGPSLat+4]))) / 1e6
	lon := float64(int32(binary.BigEndian.Uint32(payload[lms6PosGPSLon:lms6PosGPSLon+4]))) / 1e6
	alt := float64(int32(binary.BigEndian.Uint32(payload[lms6PosGPSAlt:lms6PosGPSAlt+4]))) / 1e2

	if alt > -1000 && alt < 80000 {
		out.HasPosition = true
		out.Pos.Lat = lat
		out.Pos.Lon = lon
		out.Pos.Alt = alt

		vO := float64(int16(binary.BigEndian.Uint16(payload[lms6PosGPSvO:lms6PosGPSvO+2]))) / 1e2
		vN := float64(int16(binary.BigEndian.Uint16(payload[lms6PosGPSvN:lms6PosGPSvN+2]))) / 1e2
		vV := float64(int16(binary.BigEndian.Uint16(payload[lms6PosGPSvV:lms6PosGPSvV+2]))) / 1e2

		// LMS6 transmits O/N/V (east/north/up-ish) components directly
		// rather than RS41's ECEF velocity vector, so no NEU projection
		// is needed here.
		out.VelH = math.Hypot(vO, vN)
		heading := math.Atan2(vO, vN) * 180.0 / math.Pi
		if heading < 0 {
			heading += 360
		}
		out.Heading = heading
		out.VelV = vV
	}

	out.Subtype = "LMS6"
	return out
}
