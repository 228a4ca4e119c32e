package cpu

import "sync"

// AddressingMode is a closed enumeration of the 6502's addressing modes.
type AddressingMode uint8

const (
	ModeUnimplemented AddressingMode = iota // Start of valid mode enumerations.
	ModeIMM                                 // Immediate
	ModeREL                                 // Relative (branches)
	ModeZP0                                 // Zero page
	ModeZPX                                 // Zero page,X
	ModeZPY                                 // Zero page,Y
	ModeABS                                 // Absolute
	ModeABX                                 // Absolute,X
	ModeABY                                 // Absolute,Y
	ModeIND                                 // Indirect (JMP only)
	ModeIDX                                 // (Indirect,X)
	ModeIDY                                 // (Indirect),Y
	ModeIMP                                 // Implied
	ModeACC                                 // Accumulator
	modeMax                                 // End of mode enumerations.
)

// String implements fmt.Stringer for AddressingMode, used by the
// disassembler and by test failure output.
func (m AddressingMode) String() string {
	switch m {
	case ModeIMM:
		return "IMM"
	case ModeREL:
		return "REL"
	case ModeZP0:
		return "ZP0"
	case ModeZPX:
		return "ZPX"
	case ModeZPY:
		return "ZPY"
	case ModeABS:
		return "ABS"
	case ModeABX:
		return "ABX"
	case ModeABY:
		return "ABY"
	case ModeIND:
		return "IND"
	case ModeIDX:
		return "IDX"
	case ModeIDY:
		return "IDY"
	case ModeIMP:
		return "IMP"
	case ModeACC:
		return "ACC"
	default:
		return "UNIMPLEMENTED"
	}
}

// Instruction is a single entry of the opcode table: the static facts about
// an opcode byte that both execution and disassembly key off of.
type Instruction struct {
	Mnemonic string
	Opcode   uint8
	Mode     AddressingMode
	Len      int // instruction length in bytes, including the opcode
	Cycles   int // base cycle count; conditional penalties are added at execution time
}

// unofficialOpcodes are recognized by decode (so disassembly and the opcode
// table both know about them) but have no iXXX handler: running one in
// strict mode raises UnofficialOpcode, while the step-based interactive
// driver substitutes NOP.
var unofficialOpcodes = map[uint8]bool{
	0x1C: true, 0x3C: true, 0x5C: true, 0xDC: true, 0xFC: true,
	0x1A: true, 0x3A: true, 0x5A: true, 0x7A: true, 0xDA: true, 0xFA: true,
	0x04: true, 0x44: true, 0x64: true, 0x14: true, 0x34: true, 0x54: true, 0x74: true, 0xD4: true, 0xF4: true,
	0x80: true, 0x82: true, 0x89: true, 0xC2: true, 0xE2: true,
	0x0B: true, 0x2B: true, 0x4B: true, 0x6B: true, 0x8B: true, 0xAB: true, 0xBB: true, 0xCB: true, 0xEB: true,
	0x93: true, 0x9B: true, 0x9C: true, 0x9E: true, 0x9F: true,
	0x07: true, 0x17: true, 0x0F: true, 0x1F: true, 0x1B: true, 0x03: true, 0x13: true,
	0x27: true, 0x37: true, 0x2F: true, 0x3F: true, 0x3B: true, 0x23: true, 0x33: true,
	0x47: true, 0x57: true, 0x4F: true, 0x5F: true, 0x5B: true, 0x43: true, 0x53: true,
	0x67: true, 0x77: true, 0x6F: true, 0x7F: true, 0x7B: true, 0x63: true, 0x73: true,
	0xC7: true, 0xD7: true, 0xCF: true, 0xDF: true, 0xDB: true, 0xC3: true, 0xD3: true,
	0xE7: true, 0xF7: true, 0xEF: true, 0xFF: true, 0xFB: true, 0xE3: true, 0xF3: true,
	0x02: true, 0x12: true, 0x22: true, 0x32: true, 0x42: true, 0x52: true, 0x62: true, 0x72: true, 0x92: true, 0xB2: true, 0xD2: true, 0xF2: true,
}

// IsUnofficial reports whether op is one of the recognized-but-unimplemented
// unofficial opcodes named in the spec.
func IsUnofficial(op uint8) bool {
	return unofficialOpcodes[op]
}

var (
	opcodeTableOnce sync.Once
	opcodeTable     [256]Instruction
	mnemonicTable   map[string]Instruction
	legalOpcode     [256]bool
)

// IsLegal reports whether op has a dispatchable handler - i.e. it is one of
// the documented 6502 instructions rather than a placeholder or recognized
// unofficial opcode.
func IsLegal(op uint8) bool {
	initOpcodeTable()
	return legalOpcode[op]
}

// initOpcodeTable builds the process-wide opcode table exactly once. Any
// number of Chip instances share this table read-only after initialization.
func initOpcodeTable() {
	opcodeTableOnce.Do(func() {
		// fill stamps a placeholder entry without marking it legal -
		// used for the initial sweep and never overwritten by it again.
		fill := func(op uint8, mnemonic string, mode AddressingMode, length, cycles int) {
			opcodeTable[op] = Instruction{Mnemonic: mnemonic, Opcode: op, Mode: mode, Len: length, Cycles: cycles}
		}
		// add stamps a documented instruction and marks it legal so the
		// CPU dispatch table gets a real handler for it.
		add := func(op uint8, mnemonic string, mode AddressingMode, length, cycles int) {
			fill(op, mnemonic, mode, length, cycles)
			legalOpcode[op] = true
		}
		// Placeholder fills every slot first; legal opcodes below
		// overwrite their entries and are marked dispatchable.
		for op := 0; op < 256; op++ {
			fill(uint8(op), "NOP", ModeIMP, 1, 2)
		}

		add(0x69, "ADC", ModeIMM, 2, 2)
		add(0x65, "ADC", ModeZP0, 2, 3)
		add(0x75, "ADC", ModeZPX, 2, 4)
		add(0x6D, "ADC", ModeABS, 3, 4)
		add(0x7D, "ADC", ModeABX, 3, 4)
		add(0x79, "ADC", ModeABY, 3, 4)
		add(0x61, "ADC", ModeIDX, 2, 6)
		add(0x71, "ADC", ModeIDY, 2, 5)

		add(0x29, "AND", ModeIMM, 2, 2)
		add(0x25, "AND", ModeZP0, 2, 3)
		add(0x35, "AND", ModeZPX, 2, 4)
		add(0x2D, "AND", ModeABS, 3, 4)
		add(0x3D, "AND", ModeABX, 3, 4)
		add(0x39, "AND", ModeABY, 3, 4)
		add(0x21, "AND", ModeIDX, 2, 6)
		add(0x31, "AND", ModeIDY, 2, 5)

		add(0x0A, "ASL", ModeACC, 1, 2)
		add(0x06, "ASL", ModeZP0, 2, 5)
		add(0x16, "ASL", ModeZPX, 2, 6)
		add(0x0E, "ASL", ModeABS, 3, 6)
		add(0x1E, "ASL", ModeABX, 3, 7)

		add(0x90, "BCC", ModeREL, 2, 2)
		add(0xB0, "BCS", ModeREL, 2, 2)
		add(0xF0, "BEQ", ModeREL, 2, 2)
		add(0x30, "BMI", ModeREL, 2, 2)
		add(0xD0, "BNE", ModeREL, 2, 2)
		add(0x10, "BPL", ModeREL, 2, 2)
		add(0x50, "BVC", ModeREL, 2, 2)
		add(0x70, "BVS", ModeREL, 2, 2)

		add(0x24, "BIT", ModeZP0, 2, 3)
		add(0x2C, "BIT", ModeABS, 3, 4)

		add(0x00, "BRK", ModeIMP, 1, 7)

		add(0x18, "CLC", ModeIMP, 1, 2)
		add(0xD8, "CLD", ModeIMP, 1, 2)
		add(0x58, "CLI", ModeIMP, 1, 2)
		add(0xB8, "CLV", ModeIMP, 1, 2)
		add(0x38, "SEC", ModeIMP, 1, 2)
		add(0xF8, "SED", ModeIMP, 1, 2)
		add(0x78, "SEI", ModeIMP, 1, 2)

		add(0xC9, "CMP", ModeIMM, 2, 2)
		add(0xC5, "CMP", ModeZP0, 2, 3)
		add(0xD5, "CMP", ModeZPX, 2, 4)
		add(0xCD, "CMP", ModeABS, 3, 4)
		add(0xDD, "CMP", ModeABX, 3, 4)
		add(0xD9, "CMP", ModeABY, 3, 4)
		add(0xC1, "CMP", ModeIDX, 2, 6)
		add(0xD1, "CMP", ModeIDY, 2, 5)

		add(0xE0, "CPX", ModeIMM, 2, 2)
		add(0xE4, "CPX", ModeZP0, 2, 3)
		add(0xEC, "CPX", ModeABS, 3, 4)

		add(0xC0, "CPY", ModeIMM, 2, 2)
		add(0xC4, "CPY", ModeZP0, 2, 3)
		add(0xCC, "CPY", ModeABS, 3, 4)

		add(0xC6, "DEC", ModeZP0, 2, 5)
		add(0xD6, "DEC", ModeZPX, 2, 6)
		add(0xCE, "DEC", ModeABS, 3, 6)
		add(0xDE, "DEC", ModeABX, 3, 7)

		add(0xCA, "DEX", ModeIMP, 1, 2)
		add(0x88, "DEY", ModeIMP, 1, 2)
		add(0xE8, "INX", ModeIMP, 1, 2)
		add(0xC8, "INY", ModeIMP, 1, 2)

		add(0x49, "EOR", ModeIMM, 2, 2)
		add(0x45, "EOR", ModeZP0, 2, 3)
		add(0x55, "EOR", ModeZPX, 2, 4)
		add(0x4D, "EOR", ModeABS, 3, 4)
		add(0x5D, "EOR", ModeABX, 3, 4)
		add(0x59, "EOR", ModeABY, 3, 4)
		add(0x41, "EOR", ModeIDX, 2, 6)
		add(0x51, "EOR", ModeIDY, 2, 5)

		add(0xE6, "INC", ModeZP0, 2, 5)
		add(0xF6, "INC", ModeZPX, 2, 6)
		add(0xEE, "INC", ModeABS, 3, 6)
		add(0xFE, "INC", ModeABX, 3, 7)

		add(0x4C, "JMP", ModeABS, 3, 3)
		add(0x6C, "JMP", ModeIND, 3, 5)
		add(0x20, "JSR", ModeABS, 3, 6)

		add(0xA9, "LDA", ModeIMM, 2, 2)
		add(0xA5, "LDA", ModeZP0, 2, 3)
		add(0xB5, "LDA", ModeZPX, 2, 4)
		add(0xAD, "LDA", ModeABS, 3, 4)
		add(0xBD, "LDA", ModeABX, 3, 4)
		add(0xB9, "LDA", ModeABY, 3, 4)
		add(0xA1, "LDA", ModeIDX, 2, 6)
		add(0xB1, "LDA", ModeIDY, 2, 5)

		add(0xA2, "LDX", ModeIMM, 2, 2)
		add(0xA6, "LDX", ModeZP0, 2, 3)
		add(0xB6, "LDX", ModeZPY, 2, 4)
		add(0xAE, "LDX", ModeABS, 3, 4)
		add(0xBE, "LDX", ModeABY, 3, 4)

		add(0xA0, "LDY", ModeIMM, 2, 2)
		add(0xA4, "LDY", ModeZP0, 2, 3)
		add(0xB4, "LDY", ModeZPX, 2, 4)
		add(0xAC, "LDY", ModeABS, 3, 4)
		add(0xBC, "LDY", ModeABX, 3, 4)

		add(0x4A, "LSR", ModeACC, 1, 2)
		add(0x46, "LSR", ModeZP0, 2, 5)
		add(0x56, "LSR", ModeZPX, 2, 6)
		add(0x4E, "LSR", ModeABS, 3, 6)
		add(0x5E, "LSR", ModeABX, 3, 7)

		add(0x09, "ORA", ModeIMM, 2, 2)
		add(0x05, "ORA", ModeZP0, 2, 3)
		add(0x15, "ORA", ModeZPX, 2, 4)
		add(0x0D, "ORA", ModeABS, 3, 4)
		add(0x1D, "ORA", ModeABX, 3, 4)
		add(0x19, "ORA", ModeABY, 3, 4)
		add(0x01, "ORA", ModeIDX, 2, 6)
		add(0x11, "ORA", ModeIDY, 2, 5)

		add(0x48, "PHA", ModeIMP, 1, 3)
		add(0x08, "PHP", ModeIMP, 1, 3)
		add(0x68, "PLA", ModeIMP, 1, 4)
		add(0x28, "PLP", ModeIMP, 1, 4)

		add(0x2A, "ROL", ModeACC, 1, 2)
		add(0x26, "ROL", ModeZP0, 2, 5)
		add(0x36, "ROL", ModeZPX, 2, 6)
		add(0x2E, "ROL", ModeABS, 3, 6)
		add(0x3E, "ROL", ModeABX, 3, 7)

		add(0x6A, "ROR", ModeACC, 1, 2)
		add(0x66, "ROR", ModeZP0, 2, 5)
		add(0x76, "ROR", ModeZPX, 2, 6)
		add(0x6E, "ROR", ModeABS, 3, 6)
		add(0x7E, "ROR", ModeABX, 3, 7)

		add(0x40, "RTI", ModeIMP, 1, 6)
		add(0x60, "RTS", ModeIMP, 1, 6)

		add(0xE9, "SBC", ModeIMM, 2, 2)
		add(0xE5, "SBC", ModeZP0, 2, 3)
		add(0xF5, "SBC", ModeZPX, 2, 4)
		add(0xED, "SBC", ModeABS, 3, 4)
		add(0xFD, "SBC", ModeABX, 3, 4)
		add(0xF9, "SBC", ModeABY, 3, 4)
		add(0xE1, "SBC", ModeIDX, 2, 6)
		add(0xF1, "SBC", ModeIDY, 2, 5)

		add(0x85, "STA", ModeZP0, 2, 3)
		add(0x95, "STA", ModeZPX, 2, 4)
		add(0x8D, "STA", ModeABS, 3, 4)
		add(0x9D, "STA", ModeABX, 3, 5)
		add(0x99, "STA", ModeABY, 3, 5)
		add(0x81, "STA", ModeIDX, 2, 6)
		add(0x91, "STA", ModeIDY, 2, 6)

		add(0x86, "STX", ModeZP0, 2, 3)
		add(0x96, "STX", ModeZPY, 2, 4)
		add(0x8E, "STX", ModeABS, 3, 4)

		add(0x84, "STY", ModeZP0, 2, 3)
		add(0x94, "STY", ModeZPX, 2, 4)
		add(0x8C, "STY", ModeABS, 3, 4)

		add(0xEA, "NOP", ModeIMP, 1, 2)

		add(0xAA, "TAX", ModeIMP, 1, 2)
		add(0xA8, "TAY", ModeIMP, 1, 2)
		add(0xBA, "TSX", ModeIMP, 1, 2)
		add(0x8A, "TXA", ModeIMP, 1, 2)
		add(0x9A, "TXS", ModeIMP, 1, 2)
		add(0x98, "TYA", ModeIMP, 1, 2)

		for op, unofficial := range unofficialOpcodes {
			if unofficial {
				opcodeTable[op].Mnemonic = "???"
			}
		}

		mnemonicTable = make(map[string]Instruction, 256)
		for _, inst := range opcodeTable {
			if _, ok := mnemonicTable[inst.Mnemonic]; !ok {
				mnemonicTable[inst.Mnemonic] = inst
			}
		}
		// 0xEA is the canonical single-byte NOP; several unimplemented
		// opcode slots default to the same mnemonic during table
		// construction, so pin the lookup to the real one explicitly.
		mnemonicTable["NOP"] = opcodeTable[0xEA]
	})
}

// Lookup returns the opcode table entry for op.
func Lookup(op uint8) Instruction {
	initOpcodeTable()
	return opcodeTable[op]
}

// LookupMnemonic returns the (first, canonical) opcode table entry for a
// given mnemonic, used by test utilities to go from a human-readable name
// back to an opcode byte.
func LookupMnemonic(name string) (Instruction, bool) {
	initOpcodeTable()
	inst, ok := mnemonicTable[name]
	return inst, ok
}
