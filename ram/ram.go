// Package ram implements a flat, byte-addressable bus.Bus backed by a
// fixed-size array, the reference Bus implementation used by the
// cmd/simak65run host. It is adapted from the
// teacher repository's memory.Bank (power-on randomization, aliasing by
// masked address) trimmed to exactly the bus.Bus contract the core needs.
package ram

import (
	"fmt"
	"math/rand"
)

// RAM is a power-of-two-sized byte array implementing bus.Bus. Addresses
// outside its size alias (wrap) rather than fault, same as a real 6502
// system with partially-decoded address lines.
type RAM struct {
	mem []uint8
}

// New allocates a RAM bank of the given size, which must be a power of
// two no larger than 64K. The contents are undefined until PowerOn.
func New(size int) (*RAM, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("ram: size %d must be a power of 2", size)
	}
	if size > 1<<16 {
		return nil, fmt.Errorf("ram: size %d exceeds 64K", size)
	}
	return &RAM{mem: make([]uint8, size)}, nil
}

// Read implements bus.Bus, masking addr to fit the backing array.
func (r *RAM) Read(addr uint16) uint8 {
	return r.mem[int(addr)&(len(r.mem)-1)]
}

// Write implements bus.Bus, masking addr to fit the backing array.
func (r *RAM) Write(addr uint16, val uint8) {
	r.mem[int(addr)&(len(r.mem)-1)] = val
}

// PowerOn randomizes the backing array, modelling the indeterminate
// contents of real SRAM at power-up. Deterministic tests should instead
// write known contents (or a known vector table) after calling this.
func (r *RAM) PowerOn(rng *rand.Rand) {
	for i := range r.mem {
		r.mem[i] = uint8(rng.Intn(256))
	}
}

// LoadAt copies data into the bank starting at addr, wrapping per Write's
// aliasing rule if it runs past the end of the backing array.
func (r *RAM) LoadAt(addr uint16, data []uint8) {
	for i, b := range data {
		r.Write(addr+uint16(i), b)
	}
}

// SetVector writes a little-endian 16-bit vector at addr, the form the
// NMI/RST/IRQ vector table and indirect-addressing pointers use.
func (r *RAM) SetVector(addr uint16, target uint16) {
	r.Write(addr, uint8(target&0xff))
	r.Write(addr+1, uint8(target>>8))
}
