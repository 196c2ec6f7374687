// Package cpu implements the 6502 executor/dispatcher: the register file,
// stack conventions, and the per-mnemonic semantics that combine the
// addrmode and alu packages into one instruction step, plus the reset,
// IRQ, and NMI hardware entry sequences.
package cpu

import (
	"fmt"
	"log"

	"github.com/avkaminski/simak65/addrmode"
	"github.com/avkaminski/simak65/alu"
	"github.com/avkaminski/simak65/bus"
	"github.com/avkaminski/simak65/decode"
	"github.com/avkaminski/simak65/trace"
)

// Status flag bit positions, named to match the field layout that is
// externally observable once pushed to the stack.
const (
	P_CARRY    = alu.Carry
	P_ZERO     = alu.Zero
	P_IRQD     = alu.IRQD
	P_BCD      = alu.BCD
	P_BRK      = alu.Brk
	P_ONE      = alu.One
	P_OVERFLOW = alu.Overflow
	P_SIGN     = alu.Sign
)

// Vector addresses the core loads PC from on a hardware entry.
const (
	NMIVector = uint16(0xFFFA)
	RstVector = uint16(0xFFFC)
	IRQVector = uint16(0xFFFE)
)

// stackPage is the fixed page the stack pointer is confined to.
const stackPage = uint16(0x0100)

// UnknownOpcode is returned by Step when the opcode byte at PC has no
// entry in the decode table. The core cannot continue meaningfully past
// this point.
type UnknownOpcode struct {
	Opcode uint8
	PC     uint16
}

func (e UnknownOpcode) Error() string {
	return fmt.Sprintf("cpu: unknown opcode 0x%02X at pc 0x%04X", e.Opcode, e.PC)
}

// TightLoop is returned by Step when DetectTightLoops is enabled and a
// taken branch targets its own address. This is a debugging aid, not part
// of the architectural contract; most programs never enable it.
type TightLoop struct {
	PC uint16
}

func (e TightLoop) Error() string {
	return fmt.Sprintf("cpu: tight loop detected, branch at 0x%04X targets itself", e.PC)
}

// InvalidOperand is returned by Step when a mnemonic was handed an
// operand form its semantics forbid — currently only a store (STA/STX/
// STY) receiving a non-address form, which indicates a decode-table
// inconsistency rather than a guest programming error.
type InvalidOperand struct {
	Mnemonic decode.Mnemonic
	Kind     addrmode.Kind
}

func (e InvalidOperand) Error() string {
	return fmt.Sprintf("cpu: %s given invalid operand kind %d", e.Mnemonic, e.Kind)
}

// CPU is the 6502 register/flag/cycle state plus the bus collaborator
// installed by Init. The zero value is not a valid running CPU; call Init
// and then either Rst or assign PC/A/X/Y/SP/P directly before the first
// Step.
type CPU struct {
	PC uint16
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	P  uint8

	// Trace, when set, logs each instruction's address, opcode, mnemonic
	// and operand through the trace package, before it executes; the
	// resulting flags are not logged. Off by default and zero cost
	// beyond the branch in Step.
	Trace bool

	// DetectTightLoops, when set, turns a branch whose target is the
	// branch instruction's own address into a fatal error instead of
	// letting it execute forever. Off by default: this is a debugging
	// aid, not part of the architectural contract.
	DetectTightLoops bool

	bus bus.Bus
}

// New returns a CPU with undefined register contents; the host must call
// Init and then Rst (or assign state directly) before stepping it.
func New() *CPU {
	return &CPU{}
}

// Init registers the bus used by all subsequent entry points. It does not
// modify CPU state.
func (c *CPU) Init(b bus.Bus) {
	c.bus = b
}

// Rst performs the reset entry: zero A/X/Y, SP=0xFF, P=ONE, PC loaded from
// the reset vector. No stack activity occurs. Adds 4 cycles.
func (c *CPU) Rst(cycles *uint64) {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFF
	c.P = P_ONE
	c.PC = c.readVector(RstVector)
	*cycles += 4
}

// IRQ performs the maskable-interrupt entry unconditionally; gating on the
// IRQD flag is the host's responsibility. Pushes PC hi, PC lo, flags (ONE
// set, BRK clear), sets IRQD, loads PC from the IRQ vector. Adds 7 cycles.
func (c *CPU) IRQ(cycles *uint64) {
	c.push((byte)(c.PC >> 8))
	c.push((byte)(c.PC & 0xff))
	flags := c.P | P_ONE
	flags &^= P_BRK
	c.push(flags)
	c.P |= P_IRQD
	c.PC = c.readVector(IRQVector)
	*cycles += 7
}

// NMI performs the non-maskable-interrupt entry: identical stack sequence
// to IRQ, loading PC from the NMI vector instead. Adds 7 cycles.
func (c *CPU) NMI(cycles *uint64) {
	c.push((byte)(c.PC >> 8))
	c.push((byte)(c.PC & 0xff))
	flags := c.P | P_ONE
	flags &^= P_BRK
	c.push(flags)
	c.P |= P_IRQD
	c.PC = c.readVector(NMIVector)
	*cycles += 7
}

// Step executes one instruction: fetch the opcode, decode it, fetch its
// operand, dispatch to the mnemonic's semantics, and add the consumed
// cycles to *cycles. Returns UnknownOpcode for an undefined opcode byte,
// or InvalidOperand if dispatch hits an internal inconsistency.
func (c *CPU) Step(cycles *uint64) error {
	startPC := c.PC
	opcode := c.bus.Read(c.PC)
	c.PC++
	if c.PC == 0 {
		log.Printf("cpu: program counter wrapped to 0x0000 fetching opcode at 0x%04X", startPC)
	}

	inst, ok := decode.Decode(opcode)
	if !ok {
		return UnknownOpcode{Opcode: opcode, PC: startPC}
	}

	*cycles += 2

	operand, addCycles, wrapped := addrmode.Fetch(&c.PC, c.A, c.X, c.Y, c.bus, inst.Mode)
	*cycles += uint64(addCycles)
	if wrapped {
		log.Printf("cpu: program counter wrapped to 0x0000 fetching operand for %s", inst.Mnemonic)
	}

	if c.Trace {
		trace.Log(startPC, opcode, inst, operand)
	}

	return c.dispatch(inst.Mnemonic, operand, cycles)
}

// readVector reads a little-endian 16-bit vector from addr/addr+1.
func (c *CPU) readVector(addr uint16) uint16 {
	lo := c.bus.Read(addr)
	hi := c.bus.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// push writes val to the stack and decrements SP, wrapping modulo 256. A
// wrap is a diagnostic event, not a fault.
func (c *CPU) push(val uint8) {
	addr := stackPage | uint16(c.SP)
	c.bus.Write(addr, val)
	c.SP--
	if c.SP == 0xFF {
		log.Printf("cpu: stack pointer wrapped past 0x00 on push")
	}
}

// pop increments SP first, wrapping modulo 256, then reads the stack byte.
func (c *CPU) pop() uint8 {
	c.SP++
	if c.SP == 0x00 {
		log.Printf("cpu: stack pointer wrapped past 0xFF on pop")
	}
	addr := stackPage | uint16(c.SP)
	return c.bus.Read(addr)
}

// readOperand dereferences an address operand (adding the memory-read
// cycle cost) or returns an immediate/accumulator value directly (adding
// the cheaper register-path cost). This is the "read-only and RMW source"
// half of the memory-vs-register operand policy.
func (c *CPU) readOperand(op addrmode.Operand, cycles *uint64) uint8 {
	if op.Kind == addrmode.Address {
		*cycles += 2
		return c.bus.Read(op.Addr)
	}
	*cycles += 1
	return op.Val
}

// writeBack stores an RMW result back to the operand's address (adding
// one cycle) or to the accumulator if the operand was the accumulator.
func (c *CPU) writeBack(op addrmode.Operand, val uint8, cycles *uint64) {
	if op.Kind == addrmode.Address {
		c.bus.Write(op.Addr, val)
		*cycles++
		return
	}
	c.A = val
}

// requireAddress enforces the store-mnemonic rule that an operand must be
// an address form; an immediate/accumulator form reaching a store handler
// is a dispatch inconsistency, not a guest fault.
func requireAddress(m decode.Mnemonic, op addrmode.Operand) error {
	if op.Kind != addrmode.Address {
		return InvalidOperand{Mnemonic: m, Kind: op.Kind}
	}
	return nil
}

func (c *CPU) dispatch(m decode.Mnemonic, op addrmode.Operand, cycles *uint64) error {
	switch m {
	case decode.ADC:
		arg := c.readOperand(op, cycles)
		c.A, c.P = alu.Add(c.A, arg, c.P)

	case decode.AND:
		arg := c.readOperand(op, cycles)
		c.A, c.P = alu.And(c.A, arg, c.P)

	case decode.ASL:
		arg := c.readOperand(op, cycles)
		result, p := alu.Asl(arg, c.P)
		c.P = p
		c.writeBack(op, result, cycles)

	case decode.BCC:
		return c.branch(c.P&P_CARRY == 0, op, cycles)
	case decode.BCS:
		return c.branch(c.P&P_CARRY != 0, op, cycles)
	case decode.BEQ:
		return c.branch(c.P&P_ZERO != 0, op, cycles)
	case decode.BMI:
		return c.branch(c.P&P_SIGN != 0, op, cycles)
	case decode.BNE:
		return c.branch(c.P&P_ZERO == 0, op, cycles)
	case decode.BPL:
		return c.branch(c.P&P_SIGN == 0, op, cycles)
	case decode.BVC:
		return c.branch(c.P&P_OVERFLOW == 0, op, cycles)
	case decode.BVS:
		return c.branch(c.P&P_OVERFLOW != 0, op, cycles)

	case decode.BIT:
		arg := c.readOperand(op, cycles)
		_, c.P = alu.Bit(c.A, arg, c.P)

	case decode.BRK:
		c.PC++
		c.push(byte(c.PC >> 8))
		c.push(byte(c.PC & 0xff))
		flags := c.P | P_ONE | P_BRK
		c.push(flags)
		c.P |= P_IRQD
		c.PC = c.readVector(IRQVector)
		*cycles += 4

	case decode.CLC:
		c.P &^= P_CARRY
		*cycles++
	case decode.CLD:
		c.P &^= P_BCD
		*cycles++
	case decode.CLI:
		c.P &^= P_IRQD
		*cycles++
	case decode.CLV:
		c.P &^= P_OVERFLOW
		*cycles++

	case decode.CMP:
		arg := c.readOperand(op, cycles)
		_, c.P = alu.Cmp(c.A, arg, c.P)
	case decode.CPX:
		arg := c.readOperand(op, cycles)
		_, c.P = alu.Cmp(c.X, arg, c.P)
	case decode.CPY:
		arg := c.readOperand(op, cycles)
		_, c.P = alu.Cmp(c.Y, arg, c.P)

	case decode.DEC:
		arg := c.readOperand(op, cycles)
		result, p := alu.Dec(arg, c.P)
		c.P = p
		c.writeBack(op, result, cycles)
	case decode.DEX:
		c.X, c.P = alu.Dec(c.X, c.P)
		*cycles++
	case decode.DEY:
		c.Y, c.P = alu.Dec(c.Y, c.P)
		*cycles++

	case decode.EOR:
		arg := c.readOperand(op, cycles)
		c.A, c.P = alu.Eor(c.A, arg, c.P)

	case decode.INC:
		arg := c.readOperand(op, cycles)
		result, p := alu.Inc(arg, c.P)
		c.P = p
		c.writeBack(op, result, cycles)
	case decode.INX:
		c.X, c.P = alu.Inc(c.X, c.P)
		*cycles++
	case decode.INY:
		c.Y, c.P = alu.Inc(c.Y, c.P)
		*cycles++

	case decode.JMP:
		c.PC = op.Addr
		*cycles++

	case decode.JSR:
		ret := c.PC - 1
		c.push(byte(ret >> 8))
		c.push(byte(ret & 0xff))
		c.PC = op.Addr
		*cycles += 2

	case decode.LDA:
		arg := c.readOperand(op, cycles)
		c.A, c.P = alu.Load(arg, c.P)
	case decode.LDX:
		arg := c.readOperand(op, cycles)
		c.X, c.P = alu.Load(arg, c.P)
	case decode.LDY:
		arg := c.readOperand(op, cycles)
		c.Y, c.P = alu.Load(arg, c.P)

	case decode.LSR:
		arg := c.readOperand(op, cycles)
		result, p := alu.Lsr(arg, c.P)
		c.P = p
		c.writeBack(op, result, cycles)

	case decode.NOP:
		*cycles++

	case decode.ORA:
		arg := c.readOperand(op, cycles)
		c.A, c.P = alu.Or(c.A, arg, c.P)

	case decode.PHA:
		c.push(c.A)
		*cycles += 2
	case decode.PHP:
		c.push(c.P | P_ONE | P_BRK)
		*cycles += 2
	case decode.PLA:
		c.A, c.P = alu.Load(c.pop(), c.P)
		*cycles += 2
	case decode.PLP:
		c.P = c.pop() &^ (P_BRK | P_ONE)
		*cycles += 2

	case decode.ROL:
		arg := c.readOperand(op, cycles)
		result, p := alu.Rol(arg, c.P)
		c.P = p
		c.writeBack(op, result, cycles)
	case decode.ROR:
		arg := c.readOperand(op, cycles)
		result, p := alu.Ror(arg, c.P)
		c.P = p
		c.writeBack(op, result, cycles)

	case decode.RTI:
		c.P = c.pop() &^ (P_BRK | P_ONE)
		lo := c.pop()
		hi := c.pop()
		c.PC = uint16(hi)<<8 | uint16(lo)
		*cycles += 3

	case decode.RTS:
		lo := c.pop()
		hi := c.pop()
		c.PC = (uint16(hi)<<8 | uint16(lo)) + 1
		*cycles += 2

	case decode.SBC:
		arg := c.readOperand(op, cycles)
		c.A, c.P = alu.Sub(c.A, arg, c.P)

	case decode.SEC:
		c.P |= P_CARRY
		*cycles++
	case decode.SED:
		c.P |= P_BCD
		*cycles++
	case decode.SEI:
		c.P |= P_IRQD
		*cycles++

	case decode.STA:
		if err := requireAddress(m, op); err != nil {
			return err
		}
		c.bus.Write(op.Addr, c.A)
		*cycles += 2
	case decode.STX:
		if err := requireAddress(m, op); err != nil {
			return err
		}
		c.bus.Write(op.Addr, c.X)
		*cycles += 2
	case decode.STY:
		if err := requireAddress(m, op); err != nil {
			return err
		}
		c.bus.Write(op.Addr, c.Y)
		*cycles += 2

	case decode.TAX:
		c.X, c.P = alu.Load(c.A, c.P)
		*cycles++
	case decode.TAY:
		c.Y, c.P = alu.Load(c.A, c.P)
		*cycles++
	case decode.TSX:
		c.X, c.P = alu.Load(c.SP, c.P)
		*cycles++
	case decode.TXA:
		c.A, c.P = alu.Load(c.X, c.P)
		*cycles++
	case decode.TXS:
		c.SP = c.X
		*cycles++
	case decode.TYA:
		c.A, c.P = alu.Load(c.Y, c.P)
		*cycles++

	default:
		return UnknownOpcode{Opcode: 0, PC: c.PC}
	}

	return nil
}

// branch implements the shared semantics of the eight conditional
// branches: if taken is true, PC is assigned the relative operand's
// computed target and one cycle is added; otherwise PC is left at the
// value addrmode.Fetch already advanced it to.
func (c *CPU) branch(taken bool, op addrmode.Operand, cycles *uint64) error {
	if !taken {
		return nil
	}
	if c.DetectTightLoops && op.Addr == c.PC-2 {
		return TightLoop{PC: op.Addr}
	}
	c.PC = op.Addr
	*cycles++
	return nil
}
