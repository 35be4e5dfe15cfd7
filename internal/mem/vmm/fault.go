package vmm

import (
	"unsafe"

	"github.com/castorworks/CastorOS-sub006/internal/errno"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pte"
)

// flushTLBEntryFn invalidates the TLB entry for one virtual address. It is
// a package variable, mocked by tests, mirroring gopheros's
// flushTLBEntryFn := cpu.FlushTLBEntry indirection; the HAL overwrites it
// with the real architecture call during Init.
var flushTLBEntryFn = func(v mem.Vaddr) {}

// memcopyFn copies one page's contents between two frames, reached
// through the same direct-map pointer the walker uses for page tables.
// The HAL leaves it at this default since page tables and data frames
// share the same direct map; tests run it unchanged against the arena
// their tablePtrFn resolves to.
var memcopyFn = func(dstPFN, srcPFN mem.PFN) {
	dst := unsafe.Slice((*byte)(tablePtrFn(dstPFN)), mem.PageSize)
	src := unsafe.Slice((*byte)(tablePtrFn(srcPFN)), mem.PageSize)
	copy(dst, src)
}

func zeroPage(pfn mem.PFN) {
	page := unsafe.Slice((*byte)(tablePtrFn(pfn)), mem.PageSize)
	for i := range page {
		page[i] = 0
	}
}

// HandleFault resolves a page fault at v in as. write reports whether the
// faulting access was a store. It implements the same fast/slow COW split
// as biscuit's Sys_pgfault: a refcount-1 COW page is reclaimed in place,
// a shared one is copied.
func (m *Manager) HandleFault(as *AddrSpace, v mem.Vaddr, write bool) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	region := as.findRegion(v)
	if region == nil {
		return errno.New(errno.NotMapped, "vmm.HandleFault")
	}
	if write && region.Prot&pte.WRITE == 0 {
		return errno.New(errno.Permission, "vmm.HandleFault")
	}

	page := v.AlignDown(mem.Vaddr(mem.PageSize))
	entry, present := m.Walker.Lookup(as.Root, page)

	switch {
	case present && write && pte.Has(m.Walker.Enc, entry, pte.COW):
		return m.resolveCOW(as, page, entry)
	case present:
		// Concurrent fault already resolved by another thread.
		return nil
	default:
		return m.resolveMissing(as, region, page)
	}
}

// resolveCOW implements the fast/slow split: a frame referenced exactly
// once is reclaimed without copying; anything shared is duplicated.
func (m *Manager) resolveCOW(as *AddrSpace, page mem.Vaddr, entry pte.PTE) error {
	pfn := m.Walker.Enc.Addr(entry).PFN()

	ptr, err := m.Walker.EntryPtr(as.Root, page, m.allocTable)
	if err != nil {
		return err
	}

	if m.Alloc.Refcnt(pfn) == 1 {
		*ptr = m.Walker.Enc.Modify(entry, pte.WRITE, pte.COW)
		flushTLBEntryFn(page)
		return nil
	}

	newPFN, err := m.allocTable()
	if err != nil {
		return err
	}
	memcopyFn(newPFN, pfn)

	*ptr = m.Walker.Enc.Make(newPFN.Addr(), (m.Walker.Enc.Flags(entry)|pte.WRITE)&^pte.COW)
	flushTLBEntryFn(page)
	m.Alloc.Refdown(pfn)
	return nil
}

// resolveMissing installs a fresh frame for a page that has never been
// faulted in, zero-filling anonymous regions.
func (m *Manager) resolveMissing(as *AddrSpace, region *Region, page mem.Vaddr) error {
	pfn, err := m.allocTable()
	if err != nil {
		return err
	}
	zeroPage(pfn)

	flags := pte.PRESENT | pte.USER | region.Prot

	ptr, err := m.Walker.EntryPtr(as.Root, page, m.allocTable)
	if err != nil {
		m.Alloc.FreeFrame(pfn)
		return err
	}
	*ptr = m.Walker.Enc.Make(pfn.Addr(), flags)
	return nil
}
