// Package vmm is the virtual memory manager: address spaces, the region
// list describing each space's user mappings, the page-table walker, and
// copy-on-write fault handling. It generalizes gopheros's
// kernel/mem/vmm package (single amd64 format, recursive self-mapping)
// across the 2-level i686 and 4-level amd64/arm64 formats, and folds in
// biscuit's refcount-based COW fault algorithm and user/kernel copy
// helpers from kernel/vm/as.go.
package vmm

import (
	"sync"

	"github.com/castorworks/CastorOS-sub006/internal/errno"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pte"
)

// Backing identifies what fills a Region's pages when they are first
// faulted in.
type Backing int

const (
	// BackingAnon is zero-filled anonymous memory (heap, stack, bss).
	BackingAnon Backing = iota
	// BackingZero is the read-only reserved zero frame, shared
	// copy-on-write by every mapping until first write.
	BackingZero
)

// Region describes one contiguous span of a user address space.
type Region struct {
	Base   mem.Vaddr
	Length mem.Size
	Prot   pte.Flag
	Backing Backing
}

// Contains reports whether v falls within the region.
func (r *Region) Contains(v mem.Vaddr) bool {
	return v >= r.Base && v < r.Base+mem.Vaddr(r.Length)
}

// AddrSpace is one process's virtual address space: the root page-table
// frame plus the list of user regions. The kernel half of every address
// space is shared by reference (mapped once into every root table by the
// HAL at boot) and is never represented in Regions.
type AddrSpace struct {
	mu     sync.Mutex
	Root   mem.PFN
	Regions []*Region
}

// Manager ties together a Walker, a frame allocator and zone choice for a
// single instruction set. The HAL constructs exactly one Manager at boot,
// configured with that architecture's Encoder and level count.
type Manager struct {
	Walker Walker
	Alloc  *pmm.Allocator
	Zone   pmm.Zone
}

// Default is the slot for the system's virtual memory manager. Nothing in
// this module assigns it: each HAL backend's MMU holds its own Manager,
// returned by that MMU's Manager method.
var Default *Manager

func (m *Manager) allocTable() (mem.PFN, error) {
	return m.Alloc.AllocFrame(m.Zone)
}

// CreateAddrSpace allocates a fresh root page table and returns a new,
// empty address space.
func (m *Manager) CreateAddrSpace() (*AddrSpace, error) {
	root, err := m.allocTable()
	if err != nil {
		return nil, err
	}
	m.Walker.clearTable(root)
	return &AddrSpace{Root: root}, nil
}

// DestroyAddrSpace drops a reference to every frame mapped by as's user
// regions and frees its root page table. Kernel-half mappings are shared
// and are not touched.
func (m *Manager) DestroyAddrSpace(as *AddrSpace) {
	as.mu.Lock()
	defer as.mu.Unlock()

	for _, r := range as.Regions {
		for v := r.Base; v < r.Base+mem.Vaddr(r.Length); v += mem.Vaddr(pageSize()) {
			entry, ok := m.Walker.Lookup(as.Root, v)
			if !ok || !pte.Has(m.Walker.Enc, entry, pte.PRESENT) {
				continue
			}
			m.Alloc.Refdown(m.Walker.Enc.Addr(entry).PFN())
		}
	}
	as.Regions = nil
	m.Alloc.FreeFrame(as.Root)
}

func pageSize() mem.Size { return mem.PageSize }

// findRegion returns the region containing v, if any. Callers must hold
// as.mu.
func (as *AddrSpace) findRegion(v mem.Vaddr) *Region {
	for _, r := range as.Regions {
		if r.Contains(v) {
			return r
		}
	}
	return nil
}

// Mmap reserves a new region in as. No physical frames are allocated; they
// are installed lazily by HandleFault on first access, following the
// same reserve-then-fault-in-on-demand scheme as biscuit's anonymous
// VANON mappings.
func (as *AddrSpace) Mmap(base mem.Vaddr, length mem.Size, prot pte.Flag) (*Region, error) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !base.PageAligned() || length == 0 {
		return nil, errno.New(errno.InvalidArg, "vmm.Mmap")
	}

	end := base + mem.Vaddr(length)
	for _, r := range as.Regions {
		if base < r.Base+mem.Vaddr(r.Length) && r.Base < end {
			return nil, errno.New(errno.AlreadyMapped, "vmm.Mmap")
		}
	}

	r := &Region{Base: base, Length: length, Prot: prot, Backing: BackingAnon}
	as.Regions = append(as.Regions, r)
	return r, nil
}

// Munmap removes the region starting at base and, if its pages had been
// faulted in, drops the corresponding frame references.
func (m *Manager) Munmap(as *AddrSpace, base mem.Vaddr) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	for i, r := range as.Regions {
		if r.Base != base {
			continue
		}
		for v := r.Base; v < r.Base+mem.Vaddr(r.Length); v += mem.Vaddr(pageSize()) {
			entry, ok := m.Walker.Lookup(as.Root, v)
			if ok && pte.Has(m.Walker.Enc, entry, pte.PRESENT) {
				m.Alloc.Refdown(m.Walker.Enc.Addr(entry).PFN())
				ptr, _ := m.Walker.EntryPtr(as.Root, v, m.allocTable)
				*ptr = 0
				flushTLBEntryFn(v)
			}
		}
		as.Regions = append(as.Regions[:i], as.Regions[i+1:]...)
		return nil
	}
	return errno.New(errno.NotMapped, "vmm.Munmap")
}

// Mprotect changes the protection flags recorded for the region starting
// at base. Already-present mappings are updated in place; lazily-faulted
// pages pick up the new protection the next time they fault in, matching
// the region-table-is-authoritative model biscuit and gopheros both use.
func (m *Manager) Mprotect(as *AddrSpace, base mem.Vaddr, prot pte.Flag) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	r := as.findRegion(base)
	if r == nil || r.Base != base {
		return errno.New(errno.NotMapped, "vmm.Mprotect")
	}
	r.Prot = prot

	for v := r.Base; v < r.Base+mem.Vaddr(r.Length); v += mem.Vaddr(pageSize()) {
		entry, ok := m.Walker.Lookup(as.Root, v)
		if !ok || !pte.Has(m.Walker.Enc, entry, pte.PRESENT) {
			continue
		}
		ptr, err := m.Walker.EntryPtr(as.Root, v, m.allocTable)
		if err != nil {
			return err
		}
		*ptr = m.Walker.Enc.Modify(*ptr, prot, (pte.WRITE|pte.USER|pte.EXEC)&^prot)
		flushTLBEntryFn(v)
	}
	return nil
}

// ForkAddrSpace clones as's region list into a new address space and
// marks every present, writable user page copy-on-write in both the
// parent and the child, bumping its frame's refcount once for the share.
// This mirrors fork()'s use of Sys_pgfault's COW machinery in biscuit:
// no page contents are copied until one side writes to a shared page.
func (m *Manager) ForkAddrSpace(as *AddrSpace) (*AddrSpace, error) {
	as.mu.Lock()
	defer as.mu.Unlock()

	child, err := m.CreateAddrSpace()
	if err != nil {
		return nil, err
	}

	for _, r := range as.Regions {
		childRegion := &Region{Base: r.Base, Length: r.Length, Prot: r.Prot, Backing: r.Backing}
		child.Regions = append(child.Regions, childRegion)

		for v := r.Base; v < r.Base+mem.Vaddr(r.Length); v += mem.Vaddr(pageSize()) {
			entry, ok := m.Walker.Lookup(as.Root, v)
			if !ok || !pte.Has(m.Walker.Enc, entry, pte.PRESENT) {
				continue
			}

			if pte.Has(m.Walker.Enc, entry, pte.WRITE) {
				parentPtr, _ := m.Walker.EntryPtr(as.Root, v, m.allocTable)
				*parentPtr = m.Walker.Enc.Modify(*parentPtr, pte.COW, pte.WRITE)
				flushTLBEntryFn(v)
				entry = *parentPtr
			}

			pfn := m.Walker.Enc.Addr(entry).PFN()
			m.Alloc.Refup(pfn)

			childPtr, err := m.Walker.EntryPtr(child.Root, v, m.allocTable)
			if err != nil {
				return nil, err
			}
			*childPtr = entry
		}
	}

	return child, nil
}
