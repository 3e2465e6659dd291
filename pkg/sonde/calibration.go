package sonde

// CalibrationTable is the sonde-indexed, slot-indexed table of 16-byte
// calibration rows: slot count is 0x33 for RS41, 0x20 for RS92. The
// table is keyed by serial number; a frame-number-vs-ID change (a
// serial-number change) clears it.
type CalibrationTable struct {
	serial string
	rows   map[byte][16]byte
	seen   map[byte]bool
}

// NewCalibrationTable builds an empty table.
func NewCalibrationTable() *CalibrationTable {
	return &CalibrationTable{rows: make(map[byte][16]byte), seen: make(map[byte]bool)}
}

// Observe records one calibration row (slot, data) for the given serial
// number, clearing the table first if the serial number has changed.
func (c *CalibrationTable) Observe(serial string, slot byte, row [16]byte) {
	if serial != c.serial {
		c.rows = make(map[byte][16]byte)
		c.seen = make(map[byte]bool)
		c.serial = serial
	}
	c.rows[slot] = row
	c.seen[slot] = true
}

// Row returns the stored row for slot and whether it has been seen.
func (c *CalibrationTable) Row(slot byte) ([16]byte, bool) {
	r, ok := c.rows[slot]
	return r, ok
}

// Ready reports whether every slot in required has been observed at
// least once, the precondition PTU coefficient extraction needs.
func (c *CalibrationTable) Ready(required []byte) bool {
	for _, s := range required {
		if !c.seen[s] {
			return false
		}
	}
	return true
}

// RS41RequiredSlots are the calibration slots RS41's PTU coefficient
// extractor needs : 0x03..0x06 and 0x12..0x13.
var RS41RequiredSlots = []byte{0x03, 0x04, 0x05, 0x06, 0x12, 0x13}
