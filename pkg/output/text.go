package output

import (
	"fmt"
	"strings"

	"github.com/sondedec/sondedec/pkg/sonde"
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// crcBitmap renders DecodedFrame.CRCStatus as a
// fixed-width "[00000]" bitmap: one column per tracked block (GPS1, GPS2,
// GPS3, PTU, Aux, in that order), '1' where the block's CRC/checksum
// verified and '0' where it did not. An all-passing frame prints
// "[11111]"; a frame where nothing but the frame number and serial
// decoded prints "[00000]".
func crcBitmap(status uint32) string {
	var b strings.Builder
	for _, bit := range []sonde.StatusBit{sonde.StatusGPS1, sonde.StatusGPS2, sonde.StatusGPS3, sonde.StatusPTU, sonde.StatusAux} {
		if status&uint32(bit) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// rsStatus renders the [OK]/[NO] RS-errors suffix.
func rsStatus(rsErrors int) string {
	if rsErrors < 0 {
		return "[NO]"
	}
	return "[OK]"
}

// FormatLine renders one decoded frame as text line:
// "[frame_nb] (id) weekday YYYY-MM-DD HH:MM:SS.sss lat: … lon: … alt: …
// vH: … D: … vV: … [T=…C] # [CRC bitmap] (RS-errs)".
func FormatLine(f sonde.DecodedFrame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] (%s) ", f.FrameNb, f.SerialNo)

	if f.Weekday >= 0 && f.Weekday < 7 {
		fmt.Fprintf(&b, "%s ", weekdayNames[f.Weekday])
	}
	fmt.Fprintf(&b, "%04d-%02d-%02d %02d:%02d:%06.3f ",
		f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second)

	if f.HasPosition {
		fmt.Fprintf(&b, "lat: %.6f lon: %.6f alt: %.2f vH: %.2f D: %.1f vV: %.2f ",
			f.Pos.Lat, f.Pos.Lon, f.Pos.Alt, f.VelH, f.Heading, f.VelV)
	}

	if f.HasPTU {
		fmt.Fprintf(&b, "[T=%.1fC] ", f.Temperature)
	}

	fmt.Fprintf(&b, "# [%s] %s (%d)", crcBitmap(f.CRCStatus), rsStatus(f.RSErrors), f.RSErrors)
	return b.String()
}
