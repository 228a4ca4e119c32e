// Package disassemble implements a disassembler for 6502 opcodes, driven by
// the same opcode table the cpu package uses for execution.
package disassemble

import (
	"fmt"

	"github.com/tsmith-dev/sixtyfiveoh/cpu"
	"github.com/tsmith-dev/sixtyfiveoh/memory"
)

// DisassembleCorrupt is returned when DisassembleBuf encounters an opcode
// byte with no mapping - on a detached buffer this indicates upstream
// corruption rather than a legitimate unofficial/placeholder opcode.
type DisassembleCorrupt struct {
	Opcode uint8
	Offset int
}

// Error implements the error interface.
func (e DisassembleCorrupt) Error() string {
	return fmt.Sprintf("disassemble: unmapped opcode 0x%.2X at offset %d", e.Opcode, e.Offset)
}

// Step disassembles the instruction at pc, reading from r, and returns the
// formatted line plus the number of bytes to advance pc to reach the next
// instruction. For a legal opcode it always reads the 2 bytes past pc, so the
// caller must ensure those addresses are valid (they may simply be past the
// end of a loaded program, in which case they read as zero).
func Step(pc uint16, r memory.Bank) (string, int) {
	op := r.Read(pc)
	inst := cpu.Lookup(op)
	mnemonic := inst.Mnemonic
	if mnemonic == "???" || !cpu.IsLegal(op) {
		return fmt.Sprintf("%.4X %.2X       ???", pc, op), 1
	}

	b1 := r.Read(pc + 1)
	b2 := r.Read(pc + 2)

	var out string
	switch inst.Mode {
	case cpu.ModeIMM:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s #$%.2X", pc, op, b1, mnemonic, b1)
	case cpu.ModeZP0:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X", pc, op, b1, mnemonic, b1)
	case cpu.ModeZPX:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X,X", pc, op, b1, mnemonic, b1)
	case cpu.ModeZPY:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X,Y", pc, op, b1, mnemonic, b1)
	case cpu.ModeIDX:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s ($%.2X,X)", pc, op, b1, mnemonic, b1)
	case cpu.ModeIDY:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s ($%.2X),Y", pc, op, b1, mnemonic, b1)
	case cpu.ModeABS:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s $%.2X%.2X", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeABX:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s $%.2X%.2X,X", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeABY:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s $%.2X%.2X,Y", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeIND:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s ($%.2X%.2X)", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeACC:
		out = fmt.Sprintf("%.4X %.2X       %s A", pc, op, mnemonic)
	case cpu.ModeIMP:
		out = fmt.Sprintf("%.4X %.2X       %s", pc, op, mnemonic)
	case cpu.ModeREL:
		target := uint16(int32(pc) + 2 + int32(int8(b1)))
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X (%.4X)", pc, op, b1, mnemonic, b1, target)
	default:
		out = fmt.Sprintf("%.4X %.2X       %s", pc, op, mnemonic)
	}
	return out, inst.Len
}

// StepFromChip disassembles the instruction at c's current PC and returns
// only the formatted line. Unknown opcodes render as a "???" placeholder
// rather than erroring - a live CPU's PC can legitimately sit on an
// unofficial opcode the interactive driver is about to NOP through.
func StepFromChip(c *cpu.Chip) string {
	line, _ := Step(c.PC, chipBank{c})
	return line
}

// chipBank adapts a *cpu.Chip to memory.Bank so Step can read through it
// without exposing the chip's bus type to this package.
type chipBank struct {
	c *cpu.Chip
}

func (b chipBank) Read(addr uint16) uint8    { return b.c.Read(addr) }
func (b chipBank) Write(addr uint16, v uint8) { b.c.Write(addr, v) }
func (b chipBank) PowerOn()                  {}
func (b chipBank) Parent() memory.Bank       { return nil }
func (b chipBank) DatabusVal() uint8         { return 0 }

// DisassembleBuf walks a detached byte slice from offset 0, returning one
// formatted line per instruction. Unlike Step/StepFromChip this errors hard
// on an unmapped opcode: a standalone buffer has no "currently executing"
// context to excuse a placeholder line, so hitting one means the buffer
// itself is corrupt or was never assembled 6502 code to begin with.
func DisassembleBuf(buf []uint8) ([]string, error) {
	var lines []string
	pc := 0
	for pc < len(buf) {
		op := buf[pc]
		inst := cpu.Lookup(op)
		if !cpu.IsLegal(op) {
			return lines, DisassembleCorrupt{Opcode: op, Offset: pc}
		}
		line, length := stepBuf(buf, pc, op, inst)
		lines = append(lines, line)
		pc += length
	}
	return lines, nil
}

// stepBuf formats one instruction from a detached buffer at offset pc,
// reading past the end of buf as zero (mirrors how a live bus would read
// trailing unloaded memory).
func stepBuf(buf []uint8, pc int, op uint8, inst cpu.Instruction) (string, int) {
	at := func(i int) uint8 {
		if i < 0 || i >= len(buf) {
			return 0
		}
		return buf[i]
	}
	b1 := at(pc + 1)
	b2 := at(pc + 2)
	mnemonic := inst.Mnemonic

	var out string
	switch inst.Mode {
	case cpu.ModeIMM:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s #$%.2X", pc, op, b1, mnemonic, b1)
	case cpu.ModeZP0:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X", pc, op, b1, mnemonic, b1)
	case cpu.ModeZPX:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X,X", pc, op, b1, mnemonic, b1)
	case cpu.ModeZPY:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X,Y", pc, op, b1, mnemonic, b1)
	case cpu.ModeIDX:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s ($%.2X,X)", pc, op, b1, mnemonic, b1)
	case cpu.ModeIDY:
		out = fmt.Sprintf("%.4X %.2X %.2X    %s ($%.2X),Y", pc, op, b1, mnemonic, b1)
	case cpu.ModeABS:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s $%.2X%.2X", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeABX:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s $%.2X%.2X,X", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeABY:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s $%.2X%.2X,Y", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeIND:
		out = fmt.Sprintf("%.4X %.2X %.2X %.2X %s ($%.2X%.2X)", pc, op, b1, b2, mnemonic, b2, b1)
	case cpu.ModeACC:
		out = fmt.Sprintf("%.4X %.2X       %s A", pc, op, mnemonic)
	case cpu.ModeIMP:
		out = fmt.Sprintf("%.4X %.2X       %s", pc, op, mnemonic)
	case cpu.ModeREL:
		target := uint16(int32(pc) + 2 + int32(int8(b1)))
		out = fmt.Sprintf("%.4X %.2X %.2X    %s $%.2X (%.4X)", pc, op, b1, mnemonic, b1, target)
	default:
		out = fmt.Sprintf("%.4X %.2X       %s", pc, op, mnemonic)
	}
	return out, inst.Len
}
