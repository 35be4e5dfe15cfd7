//go:build 386

package mem

const (
	// PointerShift is log2(unsafe.Sizeof(uintptr)).
	PointerShift = 2

	// PageShift is log2(PageSize).
	PageShift = 12

	// PageSize is the system's base page size in bytes.
	PageSize = Size(1 << PageShift)

	// PageTableLevels is the number of levels the walker descends on the
	// 2-level i686 format: page directory, page table.
	PageTableLevels = 2

	// VaBitsPerLevel is the width of each page-table index on i686.
	VaBitsPerLevel = 10

	PhysAddrBits = 32
	VirtAddrBits = 32
)
