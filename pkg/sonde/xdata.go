package sonde

// ExtractXData parses the auxiliary xdata block (RS41/RS92 type 0x7Exx)
// starting at pos as a sequence of (0x7E, len, payload[len], crc16)
// sub-blocks, concatenating the ASCII payload of each
// CRC-verified sub-block for output.
func ExtractXData(frame []byte, pos int) string {
	var out []byte
	for pos+2 <= len(frame) && frame[pos] == 0x7E {
		length := int(frame[pos+1])
		if pos+2+length+2 > len(frame) {
			break
		}
		payload := frame[pos+2 : pos+2+length]
		crc := u16le(frame, pos+2+length)
		if crc == CRC16CCITT(payload) {
			out = append(out, payload...)
		}
		pos += 2 + length + 2
	}
	return string(out)
}
