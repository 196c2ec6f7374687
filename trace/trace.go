// Package trace formats per-instruction debug/informational output:
// mnemonic, addressing mode, operand, and effective address. It never
// affects CPU behavior — cpu.CPU only calls into it when its Trace field
// is set, matching the debug severity spec.md describes as compiled out
// of release builds.
package trace

import (
	"fmt"
	"log"

	"github.com/avkaminski/simak65/addrmode"
	"github.com/avkaminski/simak65/decode"
)

// Format renders one decoded instruction as a single disassembly-style
// line, for example "8000  20        JSR $1234" or "8003  A9        LDA #$2A".
// Only the opcode byte is shown; the raw operand bytes are not printed.
func Format(pc uint16, opcode uint8, inst decode.Instruction, op addrmode.Operand) string {
	operand := operandText(inst.Mode, op)
	if operand == "" {
		return fmt.Sprintf("%04X  %02X        %s", pc, opcode, inst.Mnemonic)
	}
	return fmt.Sprintf("%04X  %02X        %s %s", pc, opcode, inst.Mnemonic, operand)
}

func operandText(mode addrmode.Mode, op addrmode.Operand) string {
	switch mode {
	case addrmode.Accumulator:
		return "A"
	case addrmode.Immediate:
		return fmt.Sprintf("#$%02X", op.Val)
	case addrmode.Implied:
		return ""
	case addrmode.Absolute, addrmode.Indirect, addrmode.Relative:
		return fmt.Sprintf("$%04X", op.Addr)
	case addrmode.AbsoluteX:
		return fmt.Sprintf("$%04X,X", op.Addr)
	case addrmode.AbsoluteY:
		return fmt.Sprintf("$%04X,Y", op.Addr)
	case addrmode.ZeroPage:
		return fmt.Sprintf("$%02X", op.Addr)
	case addrmode.ZeroPageX:
		return fmt.Sprintf("$%02X,X", op.Addr)
	case addrmode.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", op.Addr)
	case addrmode.IndexedIndirect:
		return fmt.Sprintf("($%04X,X)", op.Addr)
	case addrmode.IndirectIndexed:
		return fmt.Sprintf("($%04X),Y", op.Addr)
	}
	return ""
}

// Log writes a formatted instruction trace line through the standard
// logger. Called only from cpu.CPU.Step when Trace is enabled.
func Log(pc uint16, opcode uint8, inst decode.Instruction, op addrmode.Operand) {
	log.Print(Format(pc, opcode, inst, op))
}
