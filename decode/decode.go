// Package decode holds the dense opcode -> (mnemonic, addressing mode)
// table for the 56 documented 6502 mnemonics. It is generated from the
// canonical NMOS 6502 opcode matrix; entries for undefined opcode bytes
// report Valid == false so the executor can treat them as fatal.
package decode

import "github.com/avkaminski/simak65/addrmode"

// Mnemonic enumerates the 56 documented 6502 instructions.
type Mnemonic int

const (
	ADC Mnemonic = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
)

var mnemonicNames = [...]string{
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI", "BNE", "BPL",
	"BRK", "BVC", "BVS", "CLC", "CLD", "CLI", "CLV", "CMP", "CPX", "CPY",
	"DEC", "DEX", "DEY", "EOR", "INC", "INX", "INY", "JMP", "JSR", "LDA",
	"LDX", "LDY", "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA", "STX", "STY",
	"TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

// String returns the three-letter mnemonic name.
func (m Mnemonic) String() string {
	if m < 0 || int(m) >= len(mnemonicNames) {
		return "???"
	}
	return mnemonicNames[m]
}

// Instruction is one decode-table entry.
type Instruction struct {
	Mnemonic Mnemonic
	Mode     addrmode.Mode
	Valid    bool
}

// entry is shorthand used only while building Table below.
func entry(m Mnemonic, mode addrmode.Mode) Instruction {
	return Instruction{Mnemonic: m, Mode: mode, Valid: true}
}

// Table is the dense, opcode-indexed decode table. Opcodes not assigned
// below are left as their zero value (Valid == false).
var Table = buildTable()

func buildTable() [256]Instruction {
	var t [256]Instruction

	set := func(op uint8, m Mnemonic, mode addrmode.Mode) {
		t[op] = entry(m, mode)
	}

	set(0x00, BRK, addrmode.Implied)
	set(0x01, ORA, addrmode.IndexedIndirect)
	set(0x05, ORA, addrmode.ZeroPage)
	set(0x06, ASL, addrmode.ZeroPage)
	set(0x08, PHP, addrmode.Implied)
	set(0x09, ORA, addrmode.Immediate)
	set(0x0A, ASL, addrmode.Accumulator)
	set(0x0D, ORA, addrmode.Absolute)
	set(0x0E, ASL, addrmode.Absolute)

	set(0x10, BPL, addrmode.Relative)
	set(0x11, ORA, addrmode.IndirectIndexed)
	set(0x15, ORA, addrmode.ZeroPageX)
	set(0x16, ASL, addrmode.ZeroPageX)
	set(0x18, CLC, addrmode.Implied)
	set(0x19, ORA, addrmode.AbsoluteY)
	set(0x1D, ORA, addrmode.AbsoluteX)
	set(0x1E, ASL, addrmode.AbsoluteX)

	set(0x20, JSR, addrmode.Absolute)
	set(0x21, AND, addrmode.IndexedIndirect)
	set(0x24, BIT, addrmode.ZeroPage)
	set(0x25, AND, addrmode.ZeroPage)
	set(0x26, ROL, addrmode.ZeroPage)
	set(0x28, PLP, addrmode.Implied)
	set(0x29, AND, addrmode.Immediate)
	set(0x2A, ROL, addrmode.Accumulator)
	set(0x2C, BIT, addrmode.Absolute)
	set(0x2D, AND, addrmode.Absolute)
	set(0x2E, ROL, addrmode.Absolute)

	set(0x30, BMI, addrmode.Relative)
	set(0x31, AND, addrmode.IndirectIndexed)
	set(0x35, AND, addrmode.ZeroPageX)
	set(0x36, ROL, addrmode.ZeroPageX)
	set(0x38, SEC, addrmode.Implied)
	set(0x39, AND, addrmode.AbsoluteY)
	set(0x3D, AND, addrmode.AbsoluteX)
	set(0x3E, ROL, addrmode.AbsoluteX)

	set(0x40, RTI, addrmode.Implied)
	set(0x41, EOR, addrmode.IndexedIndirect)
	set(0x45, EOR, addrmode.ZeroPage)
	set(0x46, LSR, addrmode.ZeroPage)
	set(0x48, PHA, addrmode.Implied)
	set(0x49, EOR, addrmode.Immediate)
	set(0x4A, LSR, addrmode.Accumulator)
	set(0x4C, JMP, addrmode.Absolute)
	set(0x4D, EOR, addrmode.Absolute)
	set(0x4E, LSR, addrmode.Absolute)

	set(0x50, BVC, addrmode.Relative)
	set(0x51, EOR, addrmode.IndirectIndexed)
	set(0x55, EOR, addrmode.ZeroPageX)
	set(0x56, LSR, addrmode.ZeroPageX)
	set(0x58, CLI, addrmode.Implied)
	set(0x59, EOR, addrmode.AbsoluteY)
	set(0x5D, EOR, addrmode.AbsoluteX)
	set(0x5E, LSR, addrmode.AbsoluteX)

	set(0x60, RTS, addrmode.Implied)
	set(0x61, ADC, addrmode.IndexedIndirect)
	set(0x65, ADC, addrmode.ZeroPage)
	set(0x66, ROR, addrmode.ZeroPage)
	set(0x68, PLA, addrmode.Implied)
	set(0x69, ADC, addrmode.Immediate)
	set(0x6A, ROR, addrmode.Accumulator)
	set(0x6C, JMP, addrmode.Indirect)
	set(0x6D, ADC, addrmode.Absolute)
	set(0x6E, ROR, addrmode.Absolute)

	set(0x70, BVS, addrmode.Relative)
	set(0x71, ADC, addrmode.IndirectIndexed)
	set(0x75, ADC, addrmode.ZeroPageX)
	set(0x76, ROR, addrmode.ZeroPageX)
	set(0x78, SEI, addrmode.Implied)
	set(0x79, ADC, addrmode.AbsoluteY)
	set(0x7D, ADC, addrmode.AbsoluteX)
	set(0x7E, ROR, addrmode.AbsoluteX)

	set(0x81, STA, addrmode.IndexedIndirect)
	set(0x84, STY, addrmode.ZeroPage)
	set(0x85, STA, addrmode.ZeroPage)
	set(0x86, STX, addrmode.ZeroPage)
	set(0x88, DEY, addrmode.Implied)
	set(0x8A, TXA, addrmode.Implied)
	set(0x8C, STY, addrmode.Absolute)
	set(0x8D, STA, addrmode.Absolute)
	set(0x8E, STX, addrmode.Absolute)

	set(0x90, BCC, addrmode.Relative)
	set(0x91, STA, addrmode.IndirectIndexed)
	set(0x94, STY, addrmode.ZeroPageX)
	set(0x95, STA, addrmode.ZeroPageX)
	set(0x96, STX, addrmode.ZeroPageY)
	set(0x98, TYA, addrmode.Implied)
	set(0x99, STA, addrmode.AbsoluteY)
	set(0x9A, TXS, addrmode.Implied)
	set(0x9D, STA, addrmode.AbsoluteX)

	set(0xA0, LDY, addrmode.Immediate)
	set(0xA1, LDA, addrmode.IndexedIndirect)
	set(0xA2, LDX, addrmode.Immediate)
	set(0xA4, LDY, addrmode.ZeroPage)
	set(0xA5, LDA, addrmode.ZeroPage)
	set(0xA6, LDX, addrmode.ZeroPage)
	set(0xA8, TAY, addrmode.Implied)
	set(0xA9, LDA, addrmode.Immediate)
	set(0xAA, TAX, addrmode.Implied)
	set(0xAC, LDY, addrmode.Absolute)
	set(0xAD, LDA, addrmode.Absolute)
	set(0xAE, LDX, addrmode.Absolute)

	set(0xB0, BCS, addrmode.Relative)
	set(0xB1, LDA, addrmode.IndirectIndexed)
	set(0xB4, LDY, addrmode.ZeroPageX)
	set(0xB5, LDA, addrmode.ZeroPageX)
	set(0xB6, LDX, addrmode.ZeroPageY)
	set(0xB8, CLV, addrmode.Implied)
	set(0xB9, LDA, addrmode.AbsoluteY)
	set(0xBA, TSX, addrmode.Implied)
	set(0xBC, LDY, addrmode.AbsoluteX)
	set(0xBD, LDA, addrmode.AbsoluteX)
	set(0xBE, LDX, addrmode.AbsoluteY)

	set(0xC0, CPY, addrmode.Immediate)
	set(0xC1, CMP, addrmode.IndexedIndirect)
	set(0xC4, CPY, addrmode.ZeroPage)
	set(0xC5, CMP, addrmode.ZeroPage)
	set(0xC6, DEC, addrmode.ZeroPage)
	set(0xC8, INY, addrmode.Implied)
	set(0xC9, CMP, addrmode.Immediate)
	set(0xCA, DEX, addrmode.Implied)
	set(0xCC, CPY, addrmode.Absolute)
	set(0xCD, CMP, addrmode.Absolute)
	set(0xCE, DEC, addrmode.Absolute)

	set(0xD0, BNE, addrmode.Relative)
	set(0xD1, CMP, addrmode.IndirectIndexed)
	set(0xD5, CMP, addrmode.ZeroPageX)
	set(0xD6, DEC, addrmode.ZeroPageX)
	set(0xD8, CLD, addrmode.Implied)
	set(0xD9, CMP, addrmode.AbsoluteY)
	set(0xDD, CMP, addrmode.AbsoluteX)
	set(0xDE, DEC, addrmode.AbsoluteX)

	set(0xE0, CPX, addrmode.Immediate)
	set(0xE1, SBC, addrmode.IndexedIndirect)
	set(0xE4, CPX, addrmode.ZeroPage)
	set(0xE5, SBC, addrmode.ZeroPage)
	set(0xE6, INC, addrmode.ZeroPage)
	set(0xE8, INX, addrmode.Implied)
	set(0xE9, SBC, addrmode.Immediate)
	set(0xEA, NOP, addrmode.Implied)
	set(0xEC, CPX, addrmode.Absolute)
	set(0xED, SBC, addrmode.Absolute)
	set(0xEE, INC, addrmode.Absolute)

	set(0xF0, BEQ, addrmode.Relative)
	set(0xF1, SBC, addrmode.IndirectIndexed)
	set(0xF5, SBC, addrmode.ZeroPageX)
	set(0xF6, INC, addrmode.ZeroPageX)
	set(0xF8, SED, addrmode.Implied)
	set(0xF9, SBC, addrmode.AbsoluteY)
	set(0xFD, SBC, addrmode.AbsoluteX)
	set(0xFE, INC, addrmode.AbsoluteX)

	return t
}

// Decode returns the instruction mapped to opcode and whether it is a
// documented, defined opcode byte.
func Decode(opcode uint8) (Instruction, bool) {
	inst := Table[opcode]
	return inst, inst.Valid
}
