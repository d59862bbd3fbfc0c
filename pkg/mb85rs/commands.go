package mb85rs

// MB85RSxx opcodes.
const (
	opWriteEnable  = 0x06 // WREN
	opWriteDisable = 0x04 // WRDI
	opReadStatus   = 0x05 // RDSR
	opWriteStatus  = 0x01 // WRSR
	opRead         = 0x03 // READ
	opWrite        = 0x02 // WRITE
	opReadID       = 0x9F // RDID
)

// frameOverhead is the opcode plus 16-bit address preceding data in
// READ and WRITE frames.
const frameOverhead = 3

// idLength is the number of RDID response bytes.
const idLength = 4

// statusWEL is the write-enable latch bit in the status register.
const statusWEL = 0x02

// cmdFrame builds a single-opcode frame (WREN, WRDI).
func cmdFrame(op byte) []byte {
	return []byte{op}
}

// readFrame builds a READ frame for n data bytes at addr. The data
// clocks back in the trailing n bytes of the response.
func readFrame(addr uint16, n int) []byte {
	tx := make([]byte, frameOverhead+n)
	tx[0] = opRead
	tx[1] = byte(addr >> 8)
	tx[2] = byte(addr)

	return tx
}

// writeFrame builds a WRITE frame carrying data at addr.
func writeFrame(addr uint16, data []byte) []byte {
	tx := make([]byte, frameOverhead+len(data))
	tx[0] = opWrite
	tx[1] = byte(addr >> 8)
	tx[2] = byte(addr)
	copy(tx[frameOverhead:], data)

	return tx
}

// statusFrame builds an RDSR frame; the status byte clocks back in the
// second response byte.
func statusFrame() []byte {
	return []byte{opReadStatus, 0x00}
}

// idFrame builds an RDID frame; the ID clocks back in the trailing
// idLength response bytes.
func idFrame() []byte {
	tx := make([]byte, 1+idLength)
	tx[0] = opReadID

	return tx
}
