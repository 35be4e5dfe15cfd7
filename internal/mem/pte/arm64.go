package pte

import "github.com/castorworks/CastorOS-sub006/internal/mem"

// hw bit positions for a 4 KiB-granule, level-3 (page) ARMv8-A descriptor.
// This models only the subset needed by a monolithic single-address-space
// kernel: stage-1 translation, no nested virtualization.
const (
	arm64Valid     = 1 << 0
	arm64PageEntry = 1 << 1 // descriptor type: 1 = page/table, 0 = block
	arm64APReadOnly = 1 << 7 // AP[2]
	arm64APUser     = 1 << 6 // AP[1]
	arm64NoCacheIdx = 1 << 2 // selects MAIR index 1 (device/uncached) over 0
	arm64AF         = 1 << 10
	arm64NG         = 1 << 11 // non-global; absence means global
	arm64DBM        = 1 << 51
	arm64PXN        = 1 << 53
	arm64UXN        = 1 << 54
	arm64Cow        = 1 << 56 // software-defined, ignored by hardware

	arm64AddrMask = 0x0000_ffff_ffff_f000
)

// arm64Encoder implements Encoder for the ARMv8-A 4-level, 4 KiB-granule
// page table format. WRITE and USER map to the AP[2:1] permission bits;
// EXEC maps to the PXN/UXN execute-never bits (cleared when executable).
type arm64Encoder struct{}

// ARM64 is the Encoder for the 4-level ARMv8-A page table format.
var ARM64 Encoder = arm64Encoder{}

func (arm64Encoder) Make(addr mem.Paddr, flags Flag) PTE {
	p := PTE(uint64(addr) & arm64AddrMask)
	p |= arm64PageEntry
	if flags&PRESENT != 0 {
		p |= arm64Valid
	}
	if flags&WRITE == 0 {
		p |= arm64APReadOnly
	}
	if flags&USER != 0 {
		p |= arm64APUser
	}
	if flags&NOCACHE != 0 {
		p |= arm64NoCacheIdx
	}
	if flags&ACCESSED != 0 {
		p |= arm64AF
	}
	if flags&DIRTY != 0 {
		p |= arm64DBM
	}
	if flags&HUGE != 0 {
		p &^= arm64PageEntry
	}
	if flags&GLOBAL == 0 {
		p |= arm64NG
	}
	if flags&COW != 0 {
		p |= arm64Cow
	}
	if flags&EXEC == 0 {
		p |= arm64PXN | arm64UXN
	}
	return p
}

func (arm64Encoder) Addr(p PTE) mem.Paddr {
	return mem.Paddr(uint64(p) & arm64AddrMask)
}

func (arm64Encoder) Flags(p PTE) Flag {
	var f Flag
	u := uint64(p)
	if u&arm64Valid != 0 {
		f |= PRESENT
	}
	if u&arm64APReadOnly == 0 {
		f |= WRITE
	}
	if u&arm64APUser != 0 {
		f |= USER
	}
	if u&arm64NoCacheIdx != 0 {
		f |= NOCACHE
	}
	if u&arm64AF != 0 {
		f |= ACCESSED
	}
	if u&arm64DBM != 0 {
		f |= DIRTY
	}
	if u&arm64PageEntry == 0 {
		f |= HUGE
	}
	if u&arm64NG == 0 {
		f |= GLOBAL
	}
	if u&arm64Cow != 0 {
		f |= COW
	}
	if u&(arm64PXN|arm64UXN) == 0 {
		f |= EXEC
	}
	return f
}

func (e arm64Encoder) Modify(p PTE, set, clear Flag) PTE {
	addr := e.Addr(p)
	flags := (e.Flags(p) | set) &^ clear
	return e.Make(addr, flags)
}

func (arm64Encoder) VaIndex(v mem.Vaddr, level int) uintptr {
	// level 0 is L0, 1 is L1, 2 is L2, 3 is L3; each index is 9 bits
	// starting at bit 12 + 9*(3-level), matching the 4-level/4K layout.
	shift := 12 + 9*(3-level)
	return (uintptr(v) >> uint(shift)) & 0x1ff
}
