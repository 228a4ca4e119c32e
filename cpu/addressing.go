package cpu

// decodeAddressing dispatches to the addressing-mode decoder for mode,
// then performs the shared "operand fetch after decode" step for every
// memory-addressed mode (everything except ACC, IMP, REL, IND, whose
// handlers read what they need directly off effectiveAddr/branchOffset/A).
func decodeAddressing(c *Chip, mode AddressingMode) {
	switch mode {
	case ModeIMM:
		addrIMM(c)
	case ModeZP0:
		addrZP0(c)
	case ModeZPX:
		addrZPX(c)
	case ModeZPY:
		addrZPY(c)
	case ModeABS:
		addrABS(c)
	case ModeABX:
		addrABX(c)
	case ModeABY:
		addrABY(c)
	case ModeIND:
		addrIND(c)
	case ModeIDX:
		addrIDX(c)
	case ModeIDY:
		addrIDY(c)
	case ModeREL:
		addrREL(c)
	case ModeACC:
		c.operand = c.A
	case ModeIMP:
		// Nothing to decode.
	}

	switch mode {
	case ModeIMM, ModeZP0, ModeZPX, ModeZPY, ModeABS, ModeABX, ModeABY, ModeIDX, ModeIDY:
		c.operand = c.bus.Read(c.effectiveAddr)
	}
}

// addrIMM: effective address is the address of the operand byte,
// immediately following the opcode.
func addrIMM(c *Chip) {
	c.effectiveAddr = c.PC
	c.PC++
}

// addrZP0 reads a single zero-page address byte.
func addrZP0(c *Chip) {
	c.effectiveAddr = uint16(c.bus.Read(c.PC))
	c.PC++
}

// addrZPX is zero page indexed by X with 8-bit wrap.
func addrZPX(c *Chip) { addrZPXY(c, c.X) }

// addrZPY is zero page indexed by Y with 8-bit wrap.
func addrZPY(c *Chip) { addrZPXY(c, c.Y) }

func addrZPXY(c *Chip, reg uint8) {
	base := c.bus.Read(c.PC)
	c.PC++
	c.effectiveAddr = uint16(base + reg) // uint8 addition wraps at 256
}

// addrABS reads a 16-bit little-endian absolute address.
func addrABS(c *Chip) {
	c.effectiveAddr = c.bus.Read16(c.PC)
	c.PC += 2
}

// addrABX is absolute indexed by X; tracks the page-cross penalty.
func addrABX(c *Chip) { addrABXY(c, c.X) }

// addrABY is absolute indexed by Y; tracks the page-cross penalty.
func addrABY(c *Chip) { addrABXY(c, c.Y) }

func addrABXY(c *Chip, reg uint8) {
	base := c.bus.Read16(c.PC)
	c.PC += 2
	result := base + uint16(reg)
	c.pageCrossed = (base & 0xFF00) != (result & 0xFF00)
	c.effectiveAddr = result
}

// addrIND implements JMP's indirect mode, including the page-boundary bug:
// when the low byte of the pointer is 0xFF, the high byte of the target is
// fetched from the start of the same page instead of crossing into the next.
func addrIND(c *Chip) {
	p := c.bus.Read16(c.PC)
	c.PC += 2
	next := (p & 0xFF00) | ((p + 1) & 0x00FF)
	lo := c.bus.Read(p)
	hi := c.bus.Read(next)
	c.effectiveAddr = uint16(lo) | uint16(hi)<<8
}

// addrIDX is (indirect,X): the zero-page pointer is offset by X (with
// wrap) before the two-byte target address is read from it.
func addrIDX(c *Chip) {
	zp := c.bus.Read(c.PC)
	c.PC++
	ptr := zp + c.X
	lo := c.bus.Read(uint16(ptr))
	hi := c.bus.Read(uint16(ptr + 1)) // wraps to the next zero-page byte
	c.effectiveAddr = uint16(lo) | uint16(hi)<<8
}

// addrIDY is (indirect),Y: the zero-page pointer holds the base address,
// which is then indexed by Y with the page-cross penalty tracked.
func addrIDY(c *Chip) {
	zp := c.bus.Read(c.PC)
	c.PC++
	lo := c.bus.Read(uint16(zp))
	hi := c.bus.Read(uint16(zp + 1)) // wraps within the zero page
	base := uint16(lo) | uint16(hi)<<8
	result := base + uint16(c.Y)
	c.pageCrossed = (base & 0xFF00) != (result & 0xFF00)
	c.effectiveAddr = result
}

// addrREL reads the signed branch displacement byte.
func addrREL(c *Chip) {
	c.branchOffset = int8(c.bus.Read(c.PC))
	c.PC++
}
