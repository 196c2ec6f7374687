// Package alu implements the 6502 arithmetic-logic unit as a set of pure
// functions: result plus updated flags, given the prior flags. None of
// these retain state between calls.
package alu

// Flag bit positions, matching the externally observable layout pushed to
// the stack by PHP/BRK/IRQ/NMI.
const (
	Carry    = uint8(1 << 0)
	Zero     = uint8(1 << 1)
	IRQD     = uint8(1 << 2)
	BCD      = uint8(1 << 3)
	Brk      = uint8(1 << 4)
	One      = uint8(1 << 5)
	Overflow = uint8(1 << 6)
	Sign     = uint8(1 << 7)
)

// updateZeroSign sets or clears Zero and Sign in flags from result,
// touching only the bits named in mask. Bits outside mask, and all other
// flag bits, are left untouched.
func updateZeroSign(result uint8, flags uint8, mask uint8) uint8 {
	if mask&Zero != 0 {
		if result == 0 {
			flags |= Zero
		} else {
			flags &^= Zero
		}
	}
	if mask&Sign != 0 {
		if result&0x80 != 0 {
			flags |= Sign
		} else {
			flags &^= Sign
		}
	}
	return flags
}

// decimalCorrect applies the two-stage BCD correction shared by Add and
// Sub: if the low nibble (plus carry-in) exceeds 9, add 0x06; if the high
// nibble of that result then exceeds 9, add 0x60.
func decimalCorrect(lo, result uint16) uint16 {
	if lo > 9 {
		result += 0x06
	}
	if (result >> 4) > 9 {
		result += 0x60
	}
	return result
}

// Add computes a + b + carry_in (ADC), applying BCD correction when the
// BCD flag is set. Updates Carry, Zero, Sign, Overflow; preserves all
// other bits of flags.
func Add(a, b, flags uint8) (uint8, uint8) {
	carryIn := uint16(0)
	if flags&Carry != 0 {
		carryIn = 1
	}

	ai, bi := uint16(a), uint16(b)
	result := ai + bi + carryIn

	if flags&BCD != 0 {
		lo := (ai & 0xf) + (bi & 0xf) + carryIn
		result = decimalCorrect(lo, result)
	}

	if result&0xff00 != 0 {
		flags |= Carry
	} else {
		flags &^= Carry
	}

	res8 := uint8(result & 0xff)
	flags = updateZeroSign(res8, flags, Sign|Zero)

	if (ai^result)&(bi^result)&0x80 != 0 {
		flags |= Overflow
	} else {
		flags &^= Overflow
	}

	return res8, flags
}

// Sub computes a - b - !carry_in (SBC) in binary mode, or the nines-
// complement decimal formulation in BCD mode, matching the original
// source's (non-silicon-accurate) decimal behavior. Updates Carry, Zero,
// Sign, Overflow; preserves all other bits of flags.
func Sub(a, b, flags uint8) (uint8, uint8) {
	carryIn := uint16(0)
	if flags&Carry != 0 {
		carryIn = 1
	}

	ai := uint16(a)
	var bi uint16
	if flags&BCD != 0 {
		bi = uint16((0x99 - b) & 0xff)
	} else {
		bi = uint16(^b & 0xff)
	}

	result := ai + bi + carryIn

	if flags&BCD != 0 {
		lo := (ai & 0xf) + (bi & 0xf) + carryIn
		result = decimalCorrect(lo, result)
	}

	if result&0xff00 != 0 {
		flags |= Carry
	} else {
		flags &^= Carry
	}

	res8 := uint8(result & 0xff)
	flags = updateZeroSign(res8, flags, Sign|Zero)

	if (ai^result)&(bi^result)&0x80 != 0 {
		flags |= Overflow
	} else {
		flags &^= Overflow
	}

	return res8, flags
}

// Cmp implements the shared comparison semantics behind CMP/CPX/CPY:
// a + (^b) + 1, Carry set when the 9-bit sum exceeds 0xff, Zero/Sign from
// the low byte. Overflow is untouched. The result byte is discarded by
// callers; it is returned only for symmetry with the rest of the ALU.
func Cmp(a, b, flags uint8) (uint8, uint8) {
	ai := uint16(a)
	bi := uint16(^b & 0xff)
	result := ai + bi + 1

	if result&0xff00 != 0 {
		flags |= Carry
	} else {
		flags &^= Carry
	}

	res8 := uint8(result & 0xff)
	flags = updateZeroSign(res8, flags, Sign|Zero)

	return res8, flags
}

// Inc increments a modulo 256 and updates Zero/Sign.
func Inc(a, flags uint8) (uint8, uint8) {
	result := a + 1
	return result, updateZeroSign(result, flags, Sign|Zero)
}

// Dec decrements a modulo 256 and updates Zero/Sign.
func Dec(a, flags uint8) (uint8, uint8) {
	result := a - 1
	return result, updateZeroSign(result, flags, Sign|Zero)
}

// And computes a & b and updates Zero/Sign.
func And(a, b, flags uint8) (uint8, uint8) {
	result := a & b
	return result, updateZeroSign(result, flags, Sign|Zero)
}

// Or computes a | b and updates Zero/Sign.
func Or(a, b, flags uint8) (uint8, uint8) {
	result := a | b
	return result, updateZeroSign(result, flags, Sign|Zero)
}

// Eor computes a ^ b and updates Zero/Sign.
func Eor(a, b, flags uint8) (uint8, uint8) {
	result := a ^ b
	return result, updateZeroSign(result, flags, Sign|Zero)
}

// Asl shifts a left by one. Carry takes the bit shifted out (bit 7).
// Updates Zero/Sign from the result.
func Asl(a, flags uint8) (uint8, uint8) {
	result := a << 1
	flags = updateZeroSign(result, flags, Sign|Zero)
	if a&0x80 != 0 {
		flags |= Carry
	} else {
		flags &^= Carry
	}
	return result, flags
}

// Lsr shifts a right by one. Carry takes the bit shifted out (bit 0).
// Updates Zero/Sign from the result.
func Lsr(a, flags uint8) (uint8, uint8) {
	result := a >> 1
	flags = updateZeroSign(result, flags, Sign|Zero)
	if a&0x01 != 0 {
		flags |= Carry
	} else {
		flags &^= Carry
	}
	return result, flags
}

// Rol shifts a left by one with the previous Carry entering bit 0; Carry
// takes the bit shifted out of bit 7. Updates Zero/Sign from the result.
func Rol(a, flags uint8) (uint8, uint8) {
	result := a << 1
	if flags&Carry != 0 {
		result |= 0x01
	}
	newFlags := updateZeroSign(result, flags, Sign|Zero)
	if a&0x80 != 0 {
		newFlags |= Carry
	} else {
		newFlags &^= Carry
	}
	return result, newFlags
}

// Ror shifts a right by one with the previous Carry entering bit 7; Carry
// takes the bit shifted out of bit 0. Updates Zero/Sign from the result.
func Ror(a, flags uint8) (uint8, uint8) {
	result := a >> 1
	if flags&Carry != 0 {
		result |= 0x80
	}
	newFlags := updateZeroSign(result, flags, Sign|Zero)
	if a&0x01 != 0 {
		newFlags |= Carry
	} else {
		newFlags &^= Carry
	}
	return result, newFlags
}

// Bit computes Zero from a&b, Overflow from bit 6 of b, Sign from bit 7
// of b. The result byte is discarded by callers.
func Bit(a, b, flags uint8) (uint8, uint8) {
	result := a & b
	flags = updateZeroSign(result, flags, Zero)
	if b&0x40 != 0 {
		flags |= Overflow
	} else {
		flags &^= Overflow
	}
	if b&0x80 != 0 {
		flags |= Sign
	} else {
		flags &^= Sign
	}
	return result, flags
}

// Load is the identity on a, updating Zero/Sign. Used by LDA/LDX/LDY,
// PLA, and the register-transfer mnemonics that set flags (TAX/TAY/TSX/
// TXA/TYA).
func Load(a, flags uint8) (uint8, uint8) {
	return a, updateZeroSign(a, flags, Zero|Sign)
}
