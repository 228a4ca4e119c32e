// Package cpu implements the MOS 6502 register file, flag register,
// addressing-mode decoder, opcode dispatch, and cycle accounting described
// by the emulator's core specification.
package cpu

import (
	"fmt"

	"github.com/tsmith-dev/sixtyfiveoh/irq"
	"github.com/tsmith-dev/sixtyfiveoh/memory"
)

// Flag bit positions within P, fixed by the hardware.
const (
	FlagC = uint8(1 << 0) // Carry
	FlagZ = uint8(1 << 1) // Zero
	FlagI = uint8(1 << 2) // Interrupt disable
	FlagD = uint8(1 << 3) // Decimal (inert - arithmetic always binary)
	FlagB = uint8(1 << 4) // Break
	FlagU = uint8(1 << 5) // Unused, always 1 in pushed copies of P
	FlagV = uint8(1 << 6) // Overflow
	FlagN = uint8(1 << 7) // Negative
)

// Interrupt vectors.
const (
	NMIVector   = uint16(0xFFFA)
	ResetVector = uint16(0xFFFC)
	IRQVector   = uint16(0xFFFE)
)

// stackBase is the fixed page the stack pointer indexes into.
const stackBase = uint16(0x0100)

// InvalidOpcodeStrict is raised when strict (cycle-accurate) execution
// fetches an opcode byte with no mapping in the instruction table.
type InvalidOpcodeStrict struct {
	Opcode uint8
}

// Error implements the error interface.
func (e InvalidOpcodeStrict) Error() string {
	return fmt.Sprintf("invalid opcode 0x%.2X fetched under strict execution", e.Opcode)
}

// UnofficialOpcode is raised when strict execution fetches one of the
// recognized-but-unimplemented unofficial/illegal opcodes.
type UnofficialOpcode struct {
	Opcode uint8
}

// Error implements the error interface.
func (e UnofficialOpcode) Error() string {
	return fmt.Sprintf("unofficial opcode 0x%.2X fetched under strict execution", e.Opcode)
}

// Option configures a Chip at construction time.
type Option func(*Chip)

// Strict selects cycle-accurate execution: an unmapped or unofficial opcode
// terminates Step/Clock/RunCycles/RunUntilBRK with an error instead of being
// silently replaced by NOP. Interactive tooling should leave this unset.
func Strict() Option {
	return func(c *Chip) { c.strict = true }
}

// WithIRQLine installs an edge/level interrupt source polled once at the
// start of every Step, gated by the I flag exactly like a call to IRQ().
func WithIRQLine(s irq.Sender) Option {
	return func(c *Chip) { c.irqLine = s }
}

// WithNMILine installs an interrupt source polled once at the start of
// every Step, serviced unconditionally exactly like a call to NMI().
func WithNMILine(s irq.Sender) Option {
	return func(c *Chip) { c.nmiLine = s }
}

// Chip is a single MOS 6502 core and the 64KiB bus it drives.
type Chip struct {
	A  uint8  // Accumulator
	X  uint8  // Index register X
	Y  uint8  // Index register Y
	S  uint8  // Stack pointer
	P  uint8  // Status register
	PC uint16 // Program counter

	bus *memory.Bus

	strict  bool
	irqLine irq.Sender
	nmiLine irq.Sender

	cycles      uint64
	clockBudget int

	// Per-instruction scratch, cleared at the start of every fetch.
	operand       uint8
	effectiveAddr uint16
	branchOffset  int8
	currentMode   AddressingMode
	pageCrossed   bool
	branchExtra   int // extra cycles added by a taken branch / branch page cross
}

// New creates a CPU with its own fresh 64KiB bus and an explicit initial PC,
// the constructor the interactive driver uses: no RESET sequence runs, the
// caller picked PC directly.
func New(pc uint16, opts ...Option) *Chip {
	c := &Chip{
		bus: memory.NewBus(),
		S:   0xFD,
		P:   FlagU,
		PC:  pc,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewWithResetVector creates a CPU with its own fresh 64KiB bus and
// immediately runs the RESET sequence, reading PC from 0xFFFC. Typical use
// loads a program (which writes the reset vector) and then calls Reset
// again so PC picks it up.
func NewWithResetVector(opts ...Option) *Chip {
	c := &Chip{bus: memory.NewBus()}
	for _, o := range opts {
		o(c)
	}
	c.Reset()
	return c
}

// Bus returns the CPU's memory bus for direct inspection by an embedder.
func (c *Chip) Bus() *memory.Bus {
	return c.bus
}

// Load copies program into memory at the default load address (0x8000) and
// points the reset vector at it.
func (c *Chip) Load(program []uint8) error {
	return c.bus.Load(program)
}

// LoadAt copies program into memory starting at start without touching the
// reset vector.
func (c *Chip) LoadAt(program []uint8, start uint16) error {
	return c.bus.LoadAt(program, start)
}

// Read returns the byte at addr.
func (c *Chip) Read(addr uint16) uint8 {
	return c.bus.Read(addr)
}

// Write stores val at addr.
func (c *Chip) Write(addr uint16, val uint8) {
	c.bus.Write(addr, val)
}

// Slice returns an inclusive copy of memory from start to end.
func (c *Chip) Slice(start, end uint16) []uint8 {
	return c.bus.Slice(start, end)
}

// Cycles returns the total number of cycles consumed since construction.
func (c *Chip) Cycles() uint64 {
	return c.cycles
}

// read16 reads a little-endian 16-bit value off the bus.
func (c *Chip) read16(addr uint16) uint16 {
	return c.bus.Read16(addr)
}

// Reset runs the RESET sequence: A=X=Y=0, S=0xFD, P=U, PC read from
// 0xFFFC. Unconditional, no stack activity, costs 8 cycles.
func (c *Chip) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFD
	c.P = FlagU
	c.PC = c.read16(ResetVector)
	c.clearScratch()
	c.clockBudget = 0
	c.cycles += 8
}

// IRQ services a maskable interrupt if I is clear. No-op otherwise.
func (c *Chip) IRQ() {
	if c.P&FlagI != 0 {
		return
	}
	c.enterInterrupt(IRQVector, 7)
}

// NMI services a non-maskable interrupt unconditionally.
func (c *Chip) NMI() {
	c.enterInterrupt(NMIVector, 8)
}

// enterInterrupt implements the common IRQ/NMI push sequence: push PCH,
// push PCL, push P with I and U set and B cleared, set I, load PC from
// vector, account cycles.
func (c *Chip) enterInterrupt(vector uint16, cycles int) {
	c.enterInterruptNoAccount(vector)
	c.cycles += uint64(cycles)
}

// enterInterruptNoAccount is the push sequence without cycle bookkeeping,
// used from executeOne where the caller (Step/Clock) owns accounting.
func (c *Chip) enterInterruptNoAccount(vector uint16) {
	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC & 0xFF))
	p := (c.P | FlagU | FlagI) &^ FlagB
	c.push(p)
	c.P |= FlagI
	c.PC = c.read16(vector)
}

// push writes val to the stack page and decrements S, wrapping modulo 256.
func (c *Chip) push(val uint8) {
	c.bus.Write(stackBase+uint16(c.S), val)
	c.S--
}

// pop increments S and returns the byte it now points at, wrapping modulo 256.
func (c *Chip) pop() uint8 {
	c.S++
	return c.bus.Read(stackBase + uint16(c.S))
}

// clearScratch resets per-instruction scratch state. Called at the start of
// every fetch.
func (c *Chip) clearScratch() {
	c.operand = 0
	c.effectiveAddr = 0
	c.branchOffset = 0
	c.currentMode = ModeUnimplemented
	c.pageCrossed = false
	c.branchExtra = 0
}

// pageCrossBonus is the set of mnemonics that take a +1 cycle penalty on an
// indexed-addressing page cross (reads only; stores and RMW ops already pay
// the worst case in their table entry).
var pageCrossBonus = map[string]bool{
	"ADC": true, "SBC": true, "AND": true, "ORA": true, "EOR": true,
	"LDA": true, "LDX": true, "LDY": true, "CMP": true,
}

// executeOne fetches, decodes, and executes exactly one instruction,
// returning the number of cycles it consumed (including any page-cross or
// branch penalties) without touching the total cycle counter - callers
// (Step, Clock) decide how to account that.
func (c *Chip) executeOne() (int, error) {
	c.clearScratch()

	if c.nmiLine != nil && c.nmiLine.Raised() {
		c.enterInterruptNoAccount(NMIVector)
		return 8, nil
	}
	if c.irqLine != nil && c.irqLine.Raised() && c.P&FlagI == 0 {
		c.enterInterruptNoAccount(IRQVector)
		return 7, nil
	}

	op := c.bus.Read(c.PC)
	c.PC++

	inst := Lookup(op)
	handler := opHandler(op)
	if handler == nil {
		if IsUnofficial(op) {
			if c.strict {
				return 0, UnofficialOpcode{Opcode: op}
			}
		} else if c.strict {
			return 0, InvalidOpcodeStrict{Opcode: op}
		}
		nop := Lookup(0xEA)
		return nop.Cycles, nil
	}

	c.currentMode = inst.Mode
	decodeAddressing(c, inst.Mode)
	if err := handler(c); err != nil {
		return 0, err
	}

	cycles := inst.Cycles
	if c.pageCrossed && pageCrossBonus[inst.Mnemonic] {
		cycles++
	}
	cycles += c.branchExtra
	return cycles, nil
}

// Step executes exactly one instruction regardless of its cycle cost and
// returns the number of cycles it consumed. Unmapped/unofficial opcodes are
// silently replaced by NOP unless the CPU was constructed with Strict().
func (c *Chip) Step() (int, error) {
	cycles, err := c.executeOne()
	if err != nil {
		return 0, err
	}
	c.cycles += uint64(cycles)
	return cycles, nil
}

// Clock advances exactly one cycle. If the cycle budget from the previous
// fetch is exhausted it fetches and executes the next instruction, setting
// the budget to its total cost; an instruction costing N cycles therefore
// takes N Clock calls before the next fetch happens.
func (c *Chip) Clock() error {
	if c.clockBudget == 0 {
		cycles, err := c.executeOne()
		if err != nil {
			return err
		}
		c.clockBudget = cycles
	}
	c.clockBudget--
	c.cycles++
	return nil
}

// RunCycles advances the CPU by exactly n cycles via Clock.
func (c *Chip) RunCycles(n int) error {
	for i := 0; i < n; i++ {
		if err := c.Clock(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntilBRK repeatedly steps the CPU until the opcode about to be fetched
// is 0x00 (BRK), stopping before executing it so the caller observes machine
// state exactly as it stood at the breakpoint.
func (c *Chip) RunUntilBRK() error {
	for {
		if c.bus.Read(c.PC) == 0x00 {
			return nil
		}
		if _, err := c.Step(); err != nil {
			return err
		}
	}
}
