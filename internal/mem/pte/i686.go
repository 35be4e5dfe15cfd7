package pte

import "github.com/castorworks/CastorOS-sub006/internal/mem"

// hw bit positions for the i686 2-level (non-PAE) PTE format. There is no
// hardware NX bit in this format, so EXEC is a no-op: every present page
// is always executable.
const (
	i686Present  = 1 << 0
	i686Write    = 1 << 1
	i686User     = 1 << 2
	i686NoCache  = 1 << 4
	i686Accessed = 1 << 5
	i686Dirty    = 1 << 6
	i686Huge     = 1 << 7
	i686Global   = 1 << 8
	i686Cow      = 1 << 9 // software-defined (AVL) bit

	i686AddrMask = 0xffff_f000
)

// i686Encoder implements Encoder for the 2-level i686 page table format.
type i686Encoder struct{}

// I686 is the Encoder for the 2-level i686 page table format.
var I686 Encoder = i686Encoder{}

func (i686Encoder) Make(addr mem.Paddr, flags Flag) PTE {
	p := PTE(uint64(addr) & i686AddrMask)
	if flags&PRESENT != 0 {
		p |= i686Present
	}
	if flags&WRITE != 0 {
		p |= i686Write
	}
	if flags&USER != 0 {
		p |= i686User
	}
	if flags&NOCACHE != 0 {
		p |= i686NoCache
	}
	if flags&ACCESSED != 0 {
		p |= i686Accessed
	}
	if flags&DIRTY != 0 {
		p |= i686Dirty
	}
	if flags&HUGE != 0 {
		p |= i686Huge
	}
	if flags&GLOBAL != 0 {
		p |= i686Global
	}
	if flags&COW != 0 {
		p |= i686Cow
	}
	// EXEC: no hardware bit, always implicitly granted.
	return p
}

func (i686Encoder) Addr(p PTE) mem.Paddr {
	return mem.Paddr(uint64(p) & i686AddrMask)
}

func (i686Encoder) Flags(p PTE) Flag {
	var f Flag
	u := uint64(p)
	if u&i686Present != 0 {
		f |= PRESENT
	}
	if u&i686Write != 0 {
		f |= WRITE
	}
	if u&i686User != 0 {
		f |= USER
	}
	if u&i686NoCache != 0 {
		f |= NOCACHE
	}
	if u&i686Accessed != 0 {
		f |= ACCESSED
	}
	if u&i686Dirty != 0 {
		f |= DIRTY
	}
	if u&i686Huge != 0 {
		f |= HUGE
	}
	if u&i686Global != 0 {
		f |= GLOBAL
	}
	if u&i686Cow != 0 {
		f |= COW
	}
	f |= EXEC
	return f
}

func (e i686Encoder) Modify(p PTE, set, clear Flag) PTE {
	addr := e.Addr(p)
	flags := (e.Flags(p) | set) &^ clear
	return e.Make(addr, flags)
}

func (i686Encoder) VaIndex(v mem.Vaddr, level int) uintptr {
	// level 0 is the page directory, 1 the page table; each index is 10
	// bits starting at bit 12 + 10*(1-level).
	shift := 12 + 10*(1-level)
	return (uintptr(v) >> uint(shift)) & 0x3ff
}
