package pte

import "github.com/castorworks/CastorOS-sub006/internal/mem"

// hw bit positions for the amd64 (4-level, non-PAE-legacy) PTE format.
const (
	amd64Present  = 1 << 0
	amd64Write    = 1 << 1
	amd64User     = 1 << 2
	amd64NoCache  = 1 << 4
	amd64Accessed = 1 << 5
	amd64Dirty    = 1 << 6
	amd64Huge     = 1 << 7
	amd64Global   = 1 << 8
	amd64Cow      = 1 << 9 // software-defined (AVL) bit
	amd64NX       = 1 << 63

	amd64AddrMask = 0x000f_ffff_ffff_f000
)

// amd64Encoder implements Encoder for the 4-level x86_64 page table
// format. EXEC is inverted: the logical flag being absent sets the
// hardware NX bit.
type amd64Encoder struct{}

// AMD64 is the Encoder for the 4-level x86_64 page table format.
var AMD64 Encoder = amd64Encoder{}

func (amd64Encoder) Make(addr mem.Paddr, flags Flag) PTE {
	p := PTE(uint64(addr) & amd64AddrMask)
	if flags&PRESENT != 0 {
		p |= amd64Present
	}
	if flags&WRITE != 0 {
		p |= amd64Write
	}
	if flags&USER != 0 {
		p |= amd64User
	}
	if flags&NOCACHE != 0 {
		p |= amd64NoCache
	}
	if flags&ACCESSED != 0 {
		p |= amd64Accessed
	}
	if flags&DIRTY != 0 {
		p |= amd64Dirty
	}
	if flags&HUGE != 0 {
		p |= amd64Huge
	}
	if flags&GLOBAL != 0 {
		p |= amd64Global
	}
	if flags&COW != 0 {
		p |= amd64Cow
	}
	if flags&EXEC == 0 {
		p |= amd64NX
	}
	return p
}

func (amd64Encoder) Addr(p PTE) mem.Paddr {
	return mem.Paddr(uint64(p) & amd64AddrMask)
}

func (amd64Encoder) Flags(p PTE) Flag {
	var f Flag
	u := uint64(p)
	if u&amd64Present != 0 {
		f |= PRESENT
	}
	if u&amd64Write != 0 {
		f |= WRITE
	}
	if u&amd64User != 0 {
		f |= USER
	}
	if u&amd64NoCache != 0 {
		f |= NOCACHE
	}
	if u&amd64Accessed != 0 {
		f |= ACCESSED
	}
	if u&amd64Dirty != 0 {
		f |= DIRTY
	}
	if u&amd64Huge != 0 {
		f |= HUGE
	}
	if u&amd64Global != 0 {
		f |= GLOBAL
	}
	if u&amd64Cow != 0 {
		f |= COW
	}
	if u&amd64NX == 0 {
		f |= EXEC
	}
	return f
}

func (e amd64Encoder) Modify(p PTE, set, clear Flag) PTE {
	addr := e.Addr(p)
	flags := (e.Flags(p) | set) &^ clear
	return e.Make(addr, flags)
}

func (amd64Encoder) VaIndex(v mem.Vaddr, level int) uintptr {
	// level 0 is PML4, 1 PDPT, 2 PD, 3 PT; each index is 9 bits starting
	// at bit 12 + 9*(3-level).
	shift := 12 + 9*(3-level)
	return (uintptr(v) >> uint(shift)) & 0x1ff
}
