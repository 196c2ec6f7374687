// Package addrmode implements the thirteen 6502 addressing modes: given a
// CPU's program counter and index registers plus a bus, it consumes zero
// or more instruction-stream bytes, advances the program counter, and
// yields an operand form (none, a byte, or a 16-bit effective address)
// together with the cycles the mode contributes.
package addrmode

import "github.com/avkaminski/simak65/bus"

// Mode identifies one of the thirteen addressing modes.
type Mode int

const (
	Accumulator Mode = iota
	Absolute
	AbsoluteX
	AbsoluteY
	Immediate
	Implied
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
	Relative
	ZeroPage
	ZeroPageX
	ZeroPageY
)

// Kind identifies the shape of an Operand.
type Kind int

const (
	// None carries no operand value at all (implied addressing).
	None Kind = iota
	// Byte carries an 8-bit value fetched directly from the instruction
	// stream or the accumulator; there is no effective address to
	// dereference.
	Byte
	// Address carries a 16-bit effective address the executor must
	// dereference (for a source value) or write back to (for a
	// destination).
	Address
)

// Operand is the sum-type result of an addressing-mode fetch.
type Operand struct {
	Kind Kind
	Val  uint8
	Addr uint16
}

// nextPC reads the byte at *pc and advances *pc by one, wrapping modulo
// 65536. It reports whether the advance wrapped the counter back to zero,
// which callers surface as a diagnostic warning, never a behavior change.
func nextPC(pc *uint16, b bus.Bus) (uint8, bool) {
	data := b.Read(*pc)
	*pc++
	return data, *pc == 0
}

// Fetch consumes operand bytes for mode starting at *pc, advancing *pc as
// it goes, and returns the operand form, the cycles the mode adds, and
// whether a program-counter wrap-around diagnostic occurred while fetching.
func Fetch(pc *uint16, a, x, y uint8, b bus.Bus, mode Mode) (Operand, int, bool) {
	switch mode {
	case Accumulator:
		return Operand{Kind: Byte, Val: a}, 0, false

	case Absolute:
		lo, w1 := nextPC(pc, b)
		hi, w2 := nextPC(pc, b)
		addr := uint16(hi)<<8 | uint16(lo)
		return Operand{Kind: Address, Addr: addr}, 3, w1 || w2

	case AbsoluteX:
		lo, w1 := nextPC(pc, b)
		hi, w2 := nextPC(pc, b)
		addr := (uint16(hi)<<8 | uint16(lo)) + uint16(x)
		return Operand{Kind: Address, Addr: addr}, 3, w1 || w2

	case AbsoluteY:
		lo, w1 := nextPC(pc, b)
		hi, w2 := nextPC(pc, b)
		addr := (uint16(hi)<<8 | uint16(lo)) + uint16(y)
		return Operand{Kind: Address, Addr: addr}, 3, w1 || w2

	case Immediate:
		val, w := nextPC(pc, b)
		return Operand{Kind: Byte, Val: val}, 1, w

	case Implied:
		return Operand{Kind: None}, 0, false

	case Indirect:
		lo, w1 := nextPC(pc, b)
		hi, w2 := nextPC(pc, b)
		ptr := uint16(hi)<<8 | uint16(lo)
		rlo := b.Read(ptr)
		rhi := b.Read(ptr + 1)
		addr := uint16(rhi)<<8 | uint16(rlo)
		return Operand{Kind: Address, Addr: addr}, 7, w1 || w2

	case IndexedIndirect:
		zp, w := nextPC(pc, b)
		zp = (zp + x) & 0xff
		// The pointer's low byte is masked into the zero page by the X
		// addition above, but the high-byte read is not re-masked: a
		// pointer byte of 0xFF reads its high byte from 0x0100, not 0x0000.
		rlo := b.Read(uint16(zp))
		rhi := b.Read(uint16(zp) + 1)
		addr := uint16(rhi)<<8 | uint16(rlo)
		return Operand{Kind: Address, Addr: addr}, 5, w

	case IndirectIndexed:
		zp, w := nextPC(pc, b)
		// Same as IndexedIndirect: the high-byte read is not masked back
		// into the zero page, so a pointer byte of 0xFF spills into 0x0100.
		rlo := b.Read(uint16(zp))
		rhi := b.Read(uint16(zp) + 1)
		addr := (uint16(rhi)<<8 | uint16(rlo)) + uint16(y)
		return Operand{Kind: Address, Addr: addr}, 5, w

	case Relative:
		rel, w := nextPC(pc, b)
		addr := *pc + uint16(int16(int8(rel)))
		return Operand{Kind: Address, Addr: addr}, 1, w

	case ZeroPage:
		zp, w := nextPC(pc, b)
		return Operand{Kind: Address, Addr: uint16(zp)}, 2, w

	case ZeroPageX:
		zp, w := nextPC(pc, b)
		return Operand{Kind: Address, Addr: uint16((zp + x) & 0xff)}, 2, w

	case ZeroPageY:
		zp, w := nextPC(pc, b)
		return Operand{Kind: Address, Addr: uint16((zp + y) & 0xff)}, 2, w
	}

	panic("addrmode: unhandled mode")
}
