// Package memory defines the basic interfaces for working
// with a 6502 family memory map and provides the flat 64KiB
// bus implementation used by the cpu and disassemble packages.
package memory

import "fmt"

// Bank is the interface a memory implementation must provide. It mirrors a
// chaining model so a Bus can later be embedded as one RAM bank inside a
// larger memory map (MMIO fan-out) without changing its callers.
type Bank interface {
	// Read returns the data byte stored at addr.
	Read(addr uint16) uint8
	// Write updates addr with the new value.
	Write(addr uint16, val uint8)
	// PowerOn resets the bank to its post-power-on state.
	PowerOn()
	// Parent holds a reference (if non-nil) to the next level memory
	// controller. A chain of these can be created in order to find the
	// top one and query items such as databus state.
	Parent() Bank
	// DatabusVal returns the last value seen to go across on the data bus.
	DatabusVal() uint8
}

// LatestDatabusVal hunts up a chain of Banks until it finds the outermost one and
// returns the DatabusVal from it.
func LatestDatabusVal(b Bank) uint8 {
	if b.Parent() != nil {
		return LatestDatabusVal(b.Parent())
	}
	return b.DatabusVal()
}

// ProgramTooLarge is returned from Load/LoadAt when a program would spill
// into (or past) the reset-vector region at 0xFFFC.
type ProgramTooLarge struct {
	Len   int
	Start uint16
}

// Error implements the error interface.
func (e ProgramTooLarge) Error() string {
	return fmt.Sprintf("program of %d bytes starting at 0x%.4X overflows the reset vector region at 0xFFFC", e.Len, e.Start)
}

// DefaultLoadAddr is the conventional load address used by Load.
const DefaultLoadAddr = uint16(0x8000)

// resetVectorAddr is where Load writes the little-endian reset vector.
const resetVectorAddr = uint16(0xFFFC)

// Bus is a flat, byte-addressable 64KiB memory implementing Bank. It is the
// sole owner of the CPU's address space for the life of the emulator.
type Bus struct {
	ram        [1 << 16]uint8
	parent     Bank
	databusVal uint8
}

// NewBus returns a freshly zeroed 64KiB bus with no parent.
func NewBus() *Bus {
	return &Bus{}
}

// Read implements Bank.
func (b *Bus) Read(addr uint16) uint8 {
	val := b.ram[addr]
	b.databusVal = val
	return val
}

// Write implements Bank.
func (b *Bus) Write(addr uint16, val uint8) {
	b.databusVal = val
	b.ram[addr] = val
}

// PowerOn implements Bank and zeros the bus. Unlike a randomized RAM bank
// this is deterministic: the interactive core needs reproducible state for
// stepping and inspection, so randomized power-on noise is left to an
// embedder's own RAM bank rather than baked into the core bus.
func (b *Bus) PowerOn() {
	for i := range b.ram {
		b.ram[i] = 0
	}
	b.databusVal = 0
}

// Parent implements Bank. A standalone Bus has no parent.
func (b *Bus) Parent() Bank {
	return b.parent
}

// DatabusVal implements Bank.
func (b *Bus) DatabusVal() uint8 {
	return b.databusVal
}

// Read16 reads a little-endian 16-bit value: low byte at addr, high byte at
// addr+1, with addr+1 wrapping within the 64KiB space like any other read.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return lo | hi<<8
}

// write16 stores a little-endian 16-bit value at addr, addr+1.
func (b *Bus) write16(addr uint16, val uint16) {
	b.Write(addr, uint8(val&0xFF))
	b.Write(addr+1, uint8(val>>8))
}

// Load copies program into memory starting at DefaultLoadAddr and writes the
// reset vector at 0xFFFC to point at that address. Returns ProgramTooLarge
// if the program would overflow the reset-vector region.
func (b *Bus) Load(program []uint8) error {
	if err := b.LoadAt(program, DefaultLoadAddr); err != nil {
		return err
	}
	b.write16(resetVectorAddr, DefaultLoadAddr)
	return nil
}

// LoadAt copies program into memory starting at startAddr without touching
// the reset vector. Returns ProgramTooLarge under the same condition as Load.
func (b *Bus) LoadAt(program []uint8, startAddr uint16) error {
	if max := int(resetVectorAddr) - int(startAddr); len(program) > max {
		return ProgramTooLarge{Len: len(program), Start: startAddr}
	}
	for i, v := range program {
		b.Write(startAddr+uint16(i), v)
	}
	return nil
}

// Slice returns an inclusive copy of memory from start to end, used by the
// disassembler and by inspection tooling. If end < start the result is empty.
func (b *Bus) Slice(start, end uint16) []uint8 {
	if end < start {
		return nil
	}
	out := make([]uint8, 0, int(end-start)+1)
	addr := start
	for {
		out = append(out, b.ram[addr])
		if addr == end {
			break
		}
		addr++
	}
	return out
}
