package sonde

// unpackBitsMSB expands a byte slice back into one bit per byte, original
// receive order, for frame.Profile values with MSBFirst set (the
// FrameAssembler's bit packer stores the first-received bit in the
// byte's MSB in that case).
func unpackBitsMSB(b []byte) []byte {
	out := make([]byte, 0, len(b)*8)
	for _, c := range b {
		for i := 7; i >= 0; i-- {
			out = append(out, (c>>uint(i))&1)
		}
	}
	return out
}

// unpackBitsLSB is unpackBitsMSB's counterpart for MSBFirst=false
// profiles, where the FrameAssembler stores the first-received bit in
// the byte's LSB.
func unpackBitsLSB(b []byte) []byte {
	out := make([]byte, 0, len(b)*8)
	for _, c := range b {
		for i := 0; i < 8; i++ {
			out = append(out, (c>>uint(i))&1)
		}
	}
	return out
}
