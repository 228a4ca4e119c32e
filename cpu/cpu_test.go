package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
)

func diff(t *testing.T, name string, got, want interface{}) {
	t.Helper()
	if d := deep.Equal(got, want); d != nil {
		t.Errorf("%s mismatch:\ngot:  %s\nwant: %s\ndiff: %v", name, spew.Sdump(got), spew.Sdump(want), d)
	}
}

// --- Invariants -------------------------------------------------------

func TestResetSequence(t *testing.T) {
	c := New(0)
	c.A, c.X, c.Y = 0x11, 0x22, 0x33
	c.Write(ResetVector, 0x00)
	c.Write(ResetVector+1, 0x80)
	c.Reset()
	if c.A != 0 || c.X != 0 || c.Y != 0 {
		t.Errorf("Reset: registers not cleared: A=%.2X X=%.2X Y=%.2X", c.A, c.X, c.Y)
	}
	if c.S != 0xFD {
		t.Errorf("Reset: S = %.2X, want FD", c.S)
	}
	if c.P != FlagU {
		t.Errorf("Reset: P = %.2X, want %.2X (U only)", c.P, FlagU)
	}
	if c.PC != 0x8000 {
		t.Errorf("Reset: PC = %.4X, want 8000", c.PC)
	}
	if c.Cycles() != 8 {
		t.Errorf("Reset: cycles = %d, want 8", c.Cycles())
	}
}

func TestStepAccountsFullInstructionCost(t *testing.T) {
	c := New(0x8000)
	c.Write(0x8000, 0xA9) // LDA #$42
	c.Write(0x8001, 0x42)
	n, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if n != 2 {
		t.Errorf("Step: returned %d cycles, want 2", n)
	}
	if c.Cycles() != 2 {
		t.Errorf("Cycles: got %d, want 2", c.Cycles())
	}
	if c.A != 0x42 {
		t.Errorf("A: got %.2X, want 42", c.A)
	}
}

func TestClockSpreadsOneInstructionOverItsCycles(t *testing.T) {
	c := New(0x8000)
	c.Write(0x8000, 0xA9) // LDA #$42, 2 cycles
	c.Write(0x8001, 0x42)
	if err := c.Clock(); err != nil {
		t.Fatalf("Clock: %v", err)
	}
	// First Clock call fetches+executes immediately, so A updates on cycle 1.
	if c.A != 0x42 {
		t.Errorf("A after first Clock: got %.2X, want 42", c.A)
	}
	if c.Cycles() != 1 {
		t.Errorf("Cycles after first Clock: got %d, want 1", c.Cycles())
	}
	c.Write(0x8002, 0xEA) // NOP next, so a second fetch would show up if budget were wrong
	if err := c.Clock(); err != nil {
		t.Fatalf("Clock: %v", err)
	}
	if c.Cycles() != 2 {
		t.Errorf("Cycles after second Clock: got %d, want 2", c.Cycles())
	}
	if c.PC != 0x8002 {
		t.Errorf("PC after budget exhausted exactly once: got %.4X, want 8002", c.PC)
	}
}

func TestUnofficialOpcodeSubstitutesNOPInteractively(t *testing.T) {
	c := New(0x8000)
	c.Write(0x8000, 0x1A) // an unofficial NOP-like opcode with no handler
	c.Write(0x8001, 0xEA)
	n, err := c.Step()
	if err != nil {
		t.Fatalf("Step: unexpected error in non-strict mode: %v", err)
	}
	if n != Lookup(0xEA).Cycles {
		t.Errorf("Step: unofficial opcode cycle cost = %d, want NOP's %d", n, Lookup(0xEA).Cycles)
	}
	if c.PC != 0x8001 {
		t.Errorf("PC after substituted NOP: got %.4X, want 8001", c.PC)
	}
}

func TestStrictModeRejectsUnofficialOpcode(t *testing.T) {
	c := New(0x8000, Strict())
	c.Write(0x8000, 0x1A)
	_, err := c.Step()
	if _, ok := err.(UnofficialOpcode); !ok {
		t.Fatalf("Step: got error %v (%T), want UnofficialOpcode", err, err)
	}
}

func TestRunUntilBRKStopsBeforeExecuting(t *testing.T) {
	c := New(0x8000)
	c.Write(0x8000, 0xA9) // LDA #$07
	c.Write(0x8001, 0x07)
	c.Write(0x8002, 0x00) // BRK
	if err := c.RunUntilBRK(); err != nil {
		t.Fatalf("RunUntilBRK: %v", err)
	}
	if c.PC != 0x8002 {
		t.Errorf("PC: got %.4X, want 8002 (sitting on BRK, not past it)", c.PC)
	}
	if c.A != 0x07 {
		t.Errorf("A: got %.2X, want 07", c.A)
	}
}

func TestStackPushPopIsInverse(t *testing.T) {
	c := New(0x8000)
	startS := c.S
	c.push(0xAB)
	c.push(0xCD)
	if got := c.pop(); got != 0xCD {
		t.Errorf("pop: got %.2X, want CD", got)
	}
	if got := c.pop(); got != 0xAB {
		t.Errorf("pop: got %.2X, want AB", got)
	}
	if c.S != startS {
		t.Errorf("S after matched push/pop pairs: got %.2X, want %.2X", c.S, startS)
	}
}

// --- Property-test families --------------------------------------------

func TestADCOverflowFormula(t *testing.T) {
	cases := []struct {
		name                       string
		a, op, c                   uint8
		wantResult                 uint8
		wantC, wantV, wantZ, wantN bool
	}{
		{"pos+pos=pos", 0x10, 0x20, 0, 0x30, false, false, false, false},
		{"pos+pos=neg overflow", 0x50, 0x50, 0, 0xA0, false, true, false, true},
		{"neg+neg=pos overflow", 0x80, 0x80, 0, 0x00, true, true, true, false},
		{"neg+pos=neg no overflow", 0x80, 0x01, 0, 0x81, false, false, false, true},
		{"with carry in", 0x01, 0x01, 1, 0x03, false, false, false, false},
		{"carry out no overflow", 0xFF, 0x01, 0, 0x00, true, false, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(0x8000)
			c.A = tc.a
			c.operand = tc.op
			if tc.c != 0 {
				c.P |= FlagC
			}
			if err := iADC(c); err != nil {
				t.Fatalf("iADC: %v", err)
			}
			if c.A != tc.wantResult {
				t.Errorf("A: got %.2X want %.2X", c.A, tc.wantResult)
			}
			if got := c.P&FlagC != 0; got != tc.wantC {
				t.Errorf("C: got %v want %v", got, tc.wantC)
			}
			if got := c.P&FlagV != 0; got != tc.wantV {
				t.Errorf("V: got %v want %v", got, tc.wantV)
			}
			if got := c.P&FlagZ != 0; got != tc.wantZ {
				t.Errorf("Z: got %v want %v", got, tc.wantZ)
			}
			if got := c.P&FlagN != 0; got != tc.wantN {
				t.Errorf("N: got %v want %v", got, tc.wantN)
			}
		})
	}
}

func TestSBCIsADCWithInvertedOperand(t *testing.T) {
	for a := 0; a < 256; a += 17 {
		for op := 0; op < 256; op += 23 {
			for _, carry := range []bool{false, true} {
				withSBC := New(0x8000)
				withSBC.A = uint8(a)
				withSBC.operand = uint8(op)
				withADC := New(0x8000)
				withADC.A = uint8(a)
				withADC.operand = uint8(op) ^ 0xFF
				if carry {
					withSBC.P |= FlagC
					withADC.P |= FlagC
				}
				if err := iSBC(withSBC); err != nil {
					t.Fatalf("iSBC: %v", err)
				}
				if err := iADC(withADC); err != nil {
					t.Fatalf("iADC: %v", err)
				}
				if d := deep.Equal(withSBC, withADC); d != nil {
					t.Fatalf("SBC(%.2X,%.2X,carry=%v) != ADC(%.2X,inv(%.2X),carry=%v): %v",
						a, op, carry, a, op, carry, d)
				}
			}
		}
	}
}

func TestCompareSemantics(t *testing.T) {
	cases := []struct {
		reg, val            uint8
		wantC, wantZ, wantN bool
	}{
		{0x10, 0x10, true, true, false},
		{0x20, 0x10, true, false, false},
		{0x10, 0x20, false, false, true},
		{0x00, 0x01, false, false, true},
	}
	for _, tc := range cases {
		c := New(0x8000)
		c.compare(tc.reg, tc.val)
		if got := c.P&FlagC != 0; got != tc.wantC {
			t.Errorf("compare(%.2X,%.2X) C: got %v want %v", tc.reg, tc.val, got, tc.wantC)
		}
		if got := c.P&FlagZ != 0; got != tc.wantZ {
			t.Errorf("compare(%.2X,%.2X) Z: got %v want %v", tc.reg, tc.val, got, tc.wantZ)
		}
		if got := c.P&FlagN != 0; got != tc.wantN {
			t.Errorf("compare(%.2X,%.2X) N: got %v want %v", tc.reg, tc.val, got, tc.wantN)
		}
	}
}

func TestStackPushPopRoundTripsArbitraryBytes(t *testing.T) {
	c := New(0x8000)
	vals := []uint8{0x00, 0x01, 0x7F, 0x80, 0xFF, 0x55, 0xAA}
	for _, v := range vals {
		c.push(v)
	}
	for i := len(vals) - 1; i >= 0; i-- {
		if got := c.pop(); got != vals[i] {
			t.Errorf("pop: got %.2X want %.2X", got, vals[i])
		}
	}
}

// --- Literal end-to-end scenarios ---------------------------------------

func TestScenarioLDAImmediate(t *testing.T) {
	c := New(0x8000)
	c.Write(0x8000, 0xA9)
	c.Write(0x8001, 0x80)
	n, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if n != 2 {
		t.Errorf("cycles: got %d want 2", n)
	}
	if c.A != 0x80 {
		t.Errorf("A: got %.2X want 80", c.A)
	}
	if c.P&FlagN == 0 {
		t.Errorf("N flag should be set for 0x80")
	}
	if c.P&FlagZ != 0 {
		t.Errorf("Z flag should be clear")
	}
	if c.PC != 0x8002 {
		t.Errorf("PC: got %.4X want 8002", c.PC)
	}
}

func TestScenarioAbsoluteLoad(t *testing.T) {
	c := New(0x8000)
	c.Write(0x1234, 0x55)
	c.Write(0x8000, 0xAD) // LDA $1234
	c.Write(0x8001, 0x34)
	c.Write(0x8002, 0x12)
	n, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if n != 4 {
		t.Errorf("cycles: got %d want 4", n)
	}
	if c.A != 0x55 {
		t.Errorf("A: got %.2X want 55", c.A)
	}
}

func TestScenarioIndexedNoPageCross(t *testing.T) {
	c := New(0x8000)
	c.X = 0x01
	c.Write(0x1235, 0x77)
	c.Write(0x8000, 0xBD) // LDA $1234,X
	c.Write(0x8001, 0x34)
	c.Write(0x8002, 0x12)
	n, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if n != 4 {
		t.Errorf("cycles: got %d want 4 (no page cross)", n)
	}
	if c.A != 0x77 {
		t.Errorf("A: got %.2X want 77", c.A)
	}
}

func TestScenarioIndexedWithPageCross(t *testing.T) {
	c := New(0x8000)
	c.X = 0xFF
	c.Write(0x1333, 0x99)
	c.Write(0x8000, 0xBD) // LDA $1234,X -> $1333
	c.Write(0x8001, 0x34)
	c.Write(0x8002, 0x12)
	n, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if n != 5 {
		t.Errorf("cycles: got %d want 5 (page cross penalty)", n)
	}
	if c.A != 0x99 {
		t.Errorf("A: got %.2X want 99", c.A)
	}
}

func TestScenarioBranchWithPageCross(t *testing.T) {
	c := New(0x80F0)
	c.P |= FlagZ
	c.Write(0x80F0, 0xF0) // BEQ +$20 -> 80F2 + 20 = 8112, crosses page
	c.Write(0x80F1, 0x20)
	n, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if n != 4 {
		t.Errorf("cycles: got %d want 4 (2 base + taken + page cross)", n)
	}
	if c.PC != 0x8112 {
		t.Errorf("PC: got %.4X want 8112", c.PC)
	}
}

func TestScenarioJSRRTS(t *testing.T) {
	c := New(0x8000)
	c.Write(0x8000, 0x20) // JSR $9000
	c.Write(0x8001, 0x00)
	c.Write(0x8002, 0x90)
	c.Write(0x9000, 0x60) // RTS
	if _, err := c.Step(); err != nil {
		t.Fatalf("JSR Step: %v", err)
	}
	if c.PC != 0x9000 {
		t.Errorf("PC after JSR: got %.4X want 9000", c.PC)
	}
	lo := c.Read(0x0100 + uint16(c.S) + 1)
	hi := c.Read(0x0100 + uint16(c.S) + 2)
	ret := uint16(hi)<<8 | uint16(lo)
	if ret != 0x8002 {
		t.Errorf("pushed return address: got %.4X want 8002 (PC-1)", ret)
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("RTS Step: %v", err)
	}
	if c.PC != 0x8003 {
		t.Errorf("PC after RTS: got %.4X want 8003", c.PC)
	}
}

func TestScenarioBRKRTI(t *testing.T) {
	c := New(0x8000)
	c.Write(IRQVector, 0x00)
	c.Write(IRQVector+1, 0x90)
	c.Write(0x9000, 0x40) // RTI
	c.Write(0x8000, 0x00) // BRK
	c.P = FlagU | FlagC
	if _, err := c.Step(); err != nil {
		t.Fatalf("BRK Step: %v", err)
	}
	if c.PC != 0x9000 {
		t.Errorf("PC after BRK: got %.4X want 9000", c.PC)
	}
	if c.P&FlagI == 0 {
		t.Errorf("I flag should be set after BRK")
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("RTI Step: %v", err)
	}
	if c.PC != 0x8002 {
		t.Errorf("PC after RTI: got %.4X want 8002 (PC+2 from BRK, no +1)", c.PC)
	}
	if c.P&FlagB != 0 {
		t.Errorf("B flag must read back clear after RTI restores P")
	}
	if c.P&FlagC == 0 {
		t.Errorf("C flag should have survived the round trip")
	}
}

func TestScenarioSBCBorrow(t *testing.T) {
	c := New(0x8000)
	c.A = 0x05
	c.P |= FlagC // carry set means "no borrow"
	c.Write(0x8000, 0xE9) // SBC #$03
	c.Write(0x8001, 0x03)
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x02 {
		t.Errorf("A: got %.2X want 02", c.A)
	}
	if c.P&FlagC == 0 {
		t.Errorf("C should remain set: no borrow occurred")
	}

	c2 := New(0x8000)
	c2.A = 0x03
	c2.P |= FlagC
	c2.Write(0x8000, 0xE9) // SBC #$05, will borrow
	c2.Write(0x8001, 0x05)
	if _, err := c2.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c2.A != 0xFE {
		t.Errorf("A: got %.2X want FE", c2.A)
	}
	if c2.P&FlagC != 0 {
		t.Errorf("C should be clear: a borrow occurred")
	}
}

// --- Opcode table / dispatch sanity -------------------------------------

func TestLookupMnemonicRoundTripsNOP(t *testing.T) {
	inst, ok := LookupMnemonic("NOP")
	if !ok {
		t.Fatal("LookupMnemonic(NOP): not found")
	}
	if inst.Opcode != 0xEA {
		t.Errorf("NOP opcode: got %.2X want EA", inst.Opcode)
	}
	diff(t, "NOP instruction", Lookup(0xEA), inst)
}

func TestDEYOperatesOnY(t *testing.T) {
	c := New(0x8000)
	c.X = 0x10
	c.Y = 0x20
	c.Write(0x8000, 0x88) // DEY
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Y != 0x1F {
		t.Errorf("Y: got %.2X want 1F", c.Y)
	}
	if c.X != 0x10 {
		t.Errorf("X must be untouched by DEY: got %.2X want 10", c.X)
	}
}

func TestINYOperatesOnY(t *testing.T) {
	c := New(0x8000)
	c.X = 0x10
	c.Y = 0x20
	c.Write(0x8000, 0xC8) // INY
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Y != 0x21 {
		t.Errorf("Y: got %.2X want 21", c.Y)
	}
	if c.X != 0x10 {
		t.Errorf("X must be untouched by INY: got %.2X want 10", c.X)
	}
}

func TestIRQGatedByInterruptDisable(t *testing.T) {
	c := New(0x8000)
	c.Write(IRQVector, 0x00)
	c.Write(IRQVector+1, 0x90)
	c.P |= FlagI
	before := c.PC
	c.IRQ()
	if c.PC != before {
		t.Errorf("IRQ must be ignored while I is set: PC moved to %.4X", c.PC)
	}
	c.P &^= FlagI
	c.IRQ()
	if c.PC != 0x9000 {
		t.Errorf("PC after serviced IRQ: got %.4X want 9000", c.PC)
	}
}

func TestNMIIgnoresInterruptDisable(t *testing.T) {
	c := New(0x8000)
	c.Write(NMIVector, 0x00)
	c.Write(NMIVector+1, 0x91)
	c.P |= FlagI
	c.NMI()
	if c.PC != 0x9100 {
		t.Errorf("PC after NMI: got %.4X want 9100", c.PC)
	}
}
