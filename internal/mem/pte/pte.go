// Package pte provides the architecture-neutral page table entry flag set
// and the per-ISA Encoder that maps it onto real hardware bits. The page
// table walker and the VMM operate only on Flag and PTE; they never look
// at a raw hardware encoding directly.
package pte

import "github.com/castorworks/CastorOS-sub006/internal/mem"

// Flag is a logical, architecture-neutral page table entry attribute. The
// walker and the VMM manipulate Flag sets; an Encoder is responsible for
// translating them to and from the bits a given ISA's MMU actually reads.
type Flag uint32

const (
	PRESENT Flag = 1 << iota
	WRITE
	USER
	NOCACHE
	EXEC
	COW
	DIRTY
	ACCESSED
	HUGE
	GLOBAL
)

// PTE is an opaque, architecture-encoded page table entry. Its bit layout
// is only meaningful through an Encoder; callers never format or parse it
// directly.
type PTE uint64

// Encoder converts between the logical (Flag, physical address) pair and
// the hardware bit pattern for one instruction set. Each architecture
// registers exactly one Encoder (AMD64, I686 or ARM64); the HAL selects
// the right one at init time via build tags.
type Encoder interface {
	// Make builds a raw PTE from a page-aligned physical address and a
	// logical flag set.
	Make(addr mem.Paddr, flags Flag) PTE

	// Addr extracts the physical frame address from a raw PTE.
	Addr(p PTE) mem.Paddr

	// Flags extracts the logical flag set from a raw PTE.
	Flags(p PTE) Flag

	// Modify returns p with set flags applied and clear flags removed,
	// preserving the physical address.
	Modify(p PTE, set, clear Flag) PTE

	// VaIndex returns the index into the page table at the given level
	// (0 is the root) for virtual address v.
	VaIndex(v mem.Vaddr, level int) uintptr
}

// Has reports whether p carries every flag in want, according to enc.
func Has(enc Encoder, p PTE, want Flag) bool {
	return enc.Flags(p)&want == want
}

// HasAny reports whether p carries at least one flag in want.
func HasAny(enc Encoder, p PTE, want Flag) bool {
	return enc.Flags(p)&want != 0
}
