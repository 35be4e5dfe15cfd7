package vmm

import (
	"unsafe"

	"github.com/castorworks/CastorOS-sub006/internal/errno"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pte"
)

// tablePtrFn resolves a physical frame holding a page table to a pointer
// the kernel can dereference (via the direct map). It is a package
// variable, not a hard call to a HAL function, so tests can supply a
// plain byte-slice-backed implementation instead of real physical memory.
// gopher-os's walk() mocks the equivalent step with ptePtrFn.
var tablePtrFn = func(pfn mem.PFN) unsafe.Pointer {
	return unsafe.Pointer(uintptr(pfn.Addr()))
}

// SetTablePtrFn overrides the frame-to-pointer resolver, letting the HAL's
// per-ISA backend tests drive the walker against host memory instead of a
// real direct map. It returns the previous function so a test can restore
// it in a t.Cleanup.
func SetTablePtrFn(fn func(pfn mem.PFN) unsafe.Pointer) (previous func(pfn mem.PFN) unsafe.Pointer) {
	previous = tablePtrFn
	tablePtrFn = fn
	return previous
}

// Walker descends a page table tree for one instruction set's format
// (2-level i686 or 4-level amd64/arm64), generalizing gopher-os's
// amd64-only, recursively-self-mapped walk() into an architecture-neutral
// form driven entirely by a pte.Encoder, an explicit level count and the
// per-level index width: every intermediate table is reached through the
// direct map rather than through hardware recursive mapping tricks that
// do not exist on ARM64.
type Walker struct {
	Enc     pte.Encoder
	Levels  int
	Entries int // slots per table: 1024 on i686, 512 on amd64/arm64
}

func (w Walker) tableAt(pfn mem.PFN) []pte.PTE {
	return unsafe.Slice((*pte.PTE)(tablePtrFn(pfn)), w.Entries)
}

// AllocFn allocates a zeroed physical frame for use as an intermediate
// page table.
type AllocFn func() (mem.PFN, error)

// Lookup walks from root to the leaf entry for v, without creating
// missing intermediate tables. It returns the leaf pte.PTE value and
// whether every level down to the leaf was present.
func (w Walker) Lookup(root mem.PFN, v mem.Vaddr) (pte.PTE, bool) {
	cur := root
	for level := 0; level < w.Levels; level++ {
		idx := w.Enc.VaIndex(v, level)
		table := w.tableAt(cur)
		entry := table[idx]

		if !pte.Has(w.Enc, entry, pte.PRESENT) {
			return 0, false
		}

		if level == w.Levels-1 {
			return entry, true
		}

		cur = w.Enc.Addr(entry).PFN()
	}
	return 0, false
}

// EntryPtr returns a pointer to the leaf PTE slot for v, creating
// intermediate tables with alloc as needed. It is the mutable counterpart
// of Lookup, used by Map/Unmap/HandleFault to install or modify the final
// entry in place.
func (w Walker) EntryPtr(root mem.PFN, v mem.Vaddr, alloc AllocFn) (*pte.PTE, error) {
	cur := root
	for level := 0; level < w.Levels; level++ {
		idx := w.Enc.VaIndex(v, level)
		table := w.tableAt(cur)

		if level == w.Levels-1 {
			return &table[idx], nil
		}

		entry := table[idx]
		if !pte.Has(w.Enc, entry, pte.PRESENT) {
			childPFN, err := alloc()
			if err != nil {
				return nil, err
			}
			w.clearTable(childPFN)
			entry = w.Enc.Make(childPFN.Addr(), pte.PRESENT|pte.WRITE|pte.USER)
			table[idx] = entry
		}

		cur = w.Enc.Addr(entry).PFN()
	}
	return nil, errno.New(errno.InvalidArg, "vmm.EntryPtr")
}

func (w Walker) clearTable(pfn mem.PFN) {
	table := w.tableAt(pfn)
	for i := range table {
		table[i] = 0
	}
}
