//go:build amd64

package mem

const (
	// PointerShift is log2(unsafe.Sizeof(uintptr)).
	PointerShift = 3

	// PageShift is log2(PageSize), used to convert between a physical
	// address and its frame number.
	PageShift = 12

	// PageSize is the system's base page size in bytes.
	PageSize = Size(1 << PageShift)

	// PageTableLevels is the number of levels the walker descends: PML4,
	// PDPT, PD, PT.
	PageTableLevels = 4

	// VaBitsPerLevel is the width of each page-table index on amd64.
	VaBitsPerLevel = 9

	// PhysAddrBits and VirtAddrBits report the architecture's addressable
	// range, surfaced through hal.Capabilities.
	PhysAddrBits = 52
	VirtAddrBits = 48
)
