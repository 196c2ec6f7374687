package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	deep "github.com/go-test/deep"

	"github.com/avkaminski/simak65/addrmode"
	"github.com/avkaminski/simak65/decode"
)

// flatMemory is a minimal bus.Bus over a full 64K array, used to drive
// the executor in isolation. Mirrors the teacher repository's flatMemory
// test helper.
type flatMemory [65536]uint8

func (m *flatMemory) Read(addr uint16) uint8     { return m[addr] }
func (m *flatMemory) Write(addr uint16, v uint8) { m[addr] = v }

func (m *flatMemory) setVector(addr uint16, target uint16) {
	m[addr] = uint8(target & 0xff)
	m[addr+1] = uint8(target >> 8)
}

func newTestCPU() (*CPU, *flatMemory) {
	var mem flatMemory
	c := New()
	c.Init(&mem)
	return c, &mem
}

func TestResetInvariantPostState(t *testing.T) {
	c, mem := newTestCPU()
	mem.setVector(RstVector, 0x1234)
	c.A, c.X, c.Y, c.SP, c.P, c.PC = 0xAA, 0xBB, 0xCC, 0x42, 0xFF, 0x9999

	var cycles uint64
	c.Rst(&cycles)

	want := &CPU{A: 0, X: 0, Y: 0, SP: 0xFF, P: P_ONE, PC: 0x1234, bus: c.bus}
	if diff := deep.Equal(c, want); diff != nil {
		t.Errorf("post-reset state diverged: %v\nfull state: %s", diff, spew.Sdump(c))
	}
	if cycles != 4 {
		t.Errorf("cycles = %d, want 4", cycles)
	}
}

func TestPushPopIdentity(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0x80
	startSP := c.SP

	c.push(0x5A)
	got := c.pop()

	if got != 0x5A {
		t.Errorf("pop() = %#02x, want 0x5A", got)
	}
	if c.SP != startSP {
		t.Errorf("sp = %#02x, want %#02x (restored)", c.SP, startSP)
	}
}

func TestPLPClearsBrkAndOneBits(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0xFD
	c.push(0xFF) // all bits set, including BRK and ONE

	var cycles uint64
	if err := c.dispatch(decode.PLP, addrmode.Operand{Kind: addrmode.None}, &cycles); err != nil {
		t.Fatal(err)
	}
	if c.P&(P_BRK|P_ONE) != 0 {
		t.Errorf("flags = %#02x, want BRK and ONE clear after PLP", c.P)
	}
}

func TestRTIClearsBrkAndOneBits(t *testing.T) {
	c, _ := newTestCPU()
	c.SP = 0xFA
	c.push(0x12) // pc hi
	c.push(0x34) // pc lo
	c.push(0xFF) // flags, all bits set

	var cycles uint64
	if err := c.dispatch(decode.RTI, addrmode.Operand{Kind: addrmode.None}, &cycles); err != nil {
		t.Fatal(err)
	}
	if c.P&(P_BRK|P_ONE) != 0 {
		t.Errorf("flags = %#02x, want BRK and ONE clear after RTI", c.P)
	}
	if c.PC != 0x1234 {
		t.Errorf("pc = %#04x, want 0x1234", c.PC)
	}
	if cycles != 3 {
		t.Errorf("cycles = %d, want 3 (the RTI/RTS pointer-vs-pointee fix)", cycles)
	}
}

func TestBranchTakenVsNotTaken(t *testing.T) {
	c, mem := newTestCPU()
	mem[0x8000] = 0xF0 // BEQ
	mem[0x8001] = 0x10 // +16
	c.PC = 0x8000

	c.P = 0 // ZERO clear: not taken
	var cycles uint64
	if err := c.Step(&cycles); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x8002 {
		t.Errorf("pc after not-taken branch = %#04x, want 0x8002", c.PC)
	}

	c.PC = 0x8000
	c.P = P_ZERO // taken
	cycles = 0
	if err := c.Step(&cycles); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x8012 {
		t.Errorf("pc after taken branch = %#04x, want 0x8012", c.PC)
	}
}

// TestJSRRTSRoundTrip implements S5 and property 9: JSR to $1234 followed
// by RTS at $1234 returns control to the byte after the JSR operand, with
// SP restored.
func TestJSRRTSRoundTrip(t *testing.T) {
	c, mem := newTestCPU()
	mem[0x8000], mem[0x8001], mem[0x8002] = 0x20, 0x34, 0x12 // JSR $1234
	mem[0x1234] = 0x60                                       // RTS
	c.PC = 0x8000
	c.SP = 0xFF

	var cycles uint64
	if err := c.Step(&cycles); err != nil { // JSR
		t.Fatal(err)
	}
	if c.PC != 0x1234 {
		t.Fatalf("pc after JSR = %#04x, want 0x1234", c.PC)
	}
	if mem[0x01FF] != 0x80 || mem[0x01FE] != 0x02 {
		t.Fatalf("pushed return address wrong: hi=%#02x lo=%#02x, want hi=0x80 lo=0x02", mem[0x01FF], mem[0x01FE])
	}

	if err := c.Step(&cycles); err != nil { // RTS
		t.Fatal(err)
	}
	if c.PC != 0x8003 {
		t.Errorf("pc after RTS = %#04x, want 0x8003", c.PC)
	}
	if c.SP != 0xFF {
		t.Errorf("sp after round trip = %#02x, want 0xFF (restored)", c.SP)
	}
}

// TestIRQEntry implements S6.
func TestIRQEntry(t *testing.T) {
	c, mem := newTestCPU()
	mem.setVector(IRQVector, 0x1234)
	c.PC = 0x1234
	c.P = 0x20
	c.SP = 0xFF

	var cycles uint64
	c.IRQ(&cycles)

	if c.PC != 0x1234 {
		t.Errorf("pc = %#04x, want 0x1234 (vector)", c.PC)
	}
	if mem[0x01FF] != 0x12 || mem[0x01FE] != 0x34 || mem[0x01FD] != 0x20 {
		t.Errorf("stack = %#02x/%#02x/%#02x, want 0x12/0x34/0x20", mem[0x01FF], mem[0x01FE], mem[0x01FD])
	}
	if c.SP != 0xFC {
		t.Errorf("sp = %#02x, want 0xFC", c.SP)
	}
	if c.P&P_IRQD == 0 {
		t.Errorf("flags = %#02x, want IRQD set", c.P)
	}
	if mem[0x01FD]&P_BRK != 0 {
		t.Errorf("pushed flags = %#02x, want BRK clear", mem[0x01FD])
	}
}

func TestUnknownOpcodeIsFatal(t *testing.T) {
	c, mem := newTestCPU()
	mem[0x8000] = 0x02 // undefined on the documented 6502
	c.PC = 0x8000

	var cycles uint64
	err := c.Step(&cycles)
	if err == nil {
		t.Fatal("expected UnknownOpcode error")
	}
	if _, ok := err.(UnknownOpcode); !ok {
		t.Errorf("got %T, want UnknownOpcode", err)
	}
}

func TestStoreWithNonAddressOperandIsFatal(t *testing.T) {
	c, _ := newTestCPU()
	var cycles uint64
	err := c.dispatch(decode.STA, addrmode.Operand{Kind: addrmode.Byte, Val: 0x42}, &cycles)
	if err == nil {
		t.Fatal("expected InvalidOperand error")
	}
	if _, ok := err.(InvalidOperand); !ok {
		t.Errorf("got %T, want InvalidOperand", err)
	}
}

func TestLDAImmediateSetsFlagsAndCycles(t *testing.T) {
	c, mem := newTestCPU()
	mem[0x8000], mem[0x8001] = 0xA9, 0x00 // LDA #$00
	c.PC = 0x8000

	var cycles uint64
	if err := c.Step(&cycles); err != nil {
		t.Fatal(err)
	}
	if c.A != 0 {
		t.Errorf("a = %#02x, want 0", c.A)
	}
	if c.P&P_ZERO == 0 {
		t.Errorf("flags = %#02x, want ZERO set", c.P)
	}
	// baseline(2) + immediate mode(1) + register-path read(1) = 4
	if cycles != 4 {
		t.Errorf("cycles = %d, want 4", cycles)
	}
}

func TestSTAAbsoluteWritesBus(t *testing.T) {
	c, mem := newTestCPU()
	mem[0x8000], mem[0x8001], mem[0x8002] = 0x8D, 0x00, 0x20 // STA $2000
	c.PC = 0x8000
	c.A = 0x55

	var cycles uint64
	if err := c.Step(&cycles); err != nil {
		t.Fatal(err)
	}
	if mem[0x2000] != 0x55 {
		t.Errorf("mem[0x2000] = %#02x, want 0x55", mem[0x2000])
	}
	// baseline(2) + absolute mode(3) + store write(2) = 7
	if cycles != 7 {
		t.Errorf("cycles = %d, want 7", cycles)
	}
}

func TestASLMemoryRMWCycles(t *testing.T) {
	c, mem := newTestCPU()
	mem[0x8000], mem[0x8001] = 0x06, 0x10 // ASL $10
	mem[0x0010] = 0x81
	c.PC = 0x8000

	var cycles uint64
	if err := c.Step(&cycles); err != nil {
		t.Fatal(err)
	}
	if mem[0x0010] != 0x02 {
		t.Errorf("mem[0x10] = %#02x, want 0x02", mem[0x0010])
	}
	if c.P&P_CARRY == 0 {
		t.Errorf("flags = %#02x, want CARRY set (bit 7 shifted out)", c.P)
	}
	// baseline(2) + zp mode(2) + read(2) + writeback(1) = 7
	if cycles != 7 {
		t.Errorf("cycles = %d, want 7", cycles)
	}
}

func TestBRKPushesFlagsWithBrkAndOneSet(t *testing.T) {
	c, mem := newTestCPU()
	mem.setVector(IRQVector, 0x9000)
	mem[0x8000] = 0x00 // BRK
	c.PC = 0x8000
	c.P = 0
	c.SP = 0xFF

	var cycles uint64
	if err := c.Step(&cycles); err != nil {
		t.Fatal(err)
	}
	if c.PC != 0x9000 {
		t.Errorf("pc = %#04x, want 0x9000", c.PC)
	}
	pushedFlags := mem[0x01FD]
	if pushedFlags&(P_BRK|P_ONE) != P_BRK|P_ONE {
		t.Errorf("pushed flags = %#02x, want BRK and ONE set", pushedFlags)
	}
	if c.P&P_IRQD == 0 {
		t.Errorf("flags = %#02x, want IRQD set", c.P)
	}
}

// TestStepNeverMutatesUnrelatedFields checks universal property 1 for a
// flag-only instruction: SEC must not disturb any register.
func TestStepNeverMutatesUnrelatedFields(t *testing.T) {
	c, mem := newTestCPU()
	mem[0x8000] = 0x38 // SEC
	c.PC = 0x8000
	c.A, c.X, c.Y, c.SP = 0x11, 0x22, 0x33, 0x44

	var cycles uint64
	if err := c.Step(&cycles); err != nil {
		t.Fatal(err)
	}
	if c.A != 0x11 || c.X != 0x22 || c.Y != 0x33 || c.SP != 0x44 {
		t.Errorf("SEC disturbed registers: %s", spew.Sdump(c))
	}
	if c.P&P_CARRY == 0 {
		t.Errorf("flags = %#02x, want CARRY set", c.P)
	}
}
