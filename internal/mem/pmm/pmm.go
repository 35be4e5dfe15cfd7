// Package pmm is the physical memory manager. It tracks one frameInfo
// record per physical frame (allocated, protected, refcount) and hands out
// frames from a per-zone free list, the way biscuit's Physmem_t does,
// generalized from biscuit's single x86_64 address space to the zoned,
// multi-architecture layout this kernel needs.
package pmm

import (
	"sync"

	"github.com/castorworks/CastorOS-sub006/internal/errno"
	"github.com/castorworks/CastorOS-sub006/internal/kfmt/early"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// frameInfo is the bookkeeping record kept for every frame under
// management. Invariants (enforced by Alloc/Free/Refup/Refdown):
//   - refcount == 0 iff allocated == false, except transiently inside the
//     allocator while the lock is held.
//   - protected implies the frame is never on a free list.
type frameInfo struct {
	allocated bool
	protected bool
	refcount  uint16
	next      mem.PFN // free-list link, valid only when not allocated
}

// freeList is a singly linked list of free frames threaded through
// frameInfo.next, one per zone.
type freeList struct {
	head  mem.PFN
	valid bool
}

// Allocator is the system's physical frame allocator. There is exactly one
// instance, Default, built once during early boot from the regions the
// boot-info adapter reports.
type Allocator struct {
	mu sync.Mutex

	startPFN mem.PFN
	frames   []frameInfo
	free     [zoneCount]freeList
	count    [zoneCount]int
}

// Default is the system physical memory allocator, initialized once by
// Init during early boot.
var Default = &Allocator{}

// Init builds the frame table for the given usable regions and seeds each
// zone's free list. reserved frames (kernel image, boot structures,
// already-mapped data) are marked protected so Alloc never returns them
// and Free on them is a no-op warning.
func (a *Allocator) Init(regions []Region, reserved []Region) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(regions) == 0 {
		return
	}

	lowest, highest := regions[0].Base, regions[0].End()
	for _, r := range regions[1:] {
		if r.Base < lowest {
			lowest = r.Base
		}
		if r.End() > highest {
			highest = r.End()
		}
	}

	a.startPFN = lowest.PFN()
	frameCount := int(highest.PFN() - a.startPFN)
	a.frames = make([]frameInfo, frameCount)

	for i := range a.frames {
		a.frames[i].protected = true
	}

	for _, r := range regions {
		start := r.Base.PFN()
		end := r.End().PFN()
		for pfn := start; pfn < end; pfn++ {
			a.frames[pfn-a.startPFN].protected = false
		}
	}

	for _, r := range reserved {
		start := r.Base.PFN()
		end := r.End().PFN()
		for pfn := start; pfn < end; pfn++ {
			idx := pfn - a.startPFN
			if int(idx) < len(a.frames) {
				a.frames[idx].protected = true
			}
		}
	}

	for i := len(a.frames) - 1; i >= 0; i-- {
		if a.frames[i].protected {
			continue
		}
		pfn := a.startPFN + mem.PFN(i)
		zone := classify(pfn.Addr())
		a.frames[i].next = a.free[zone].head
		a.free[zone].head = pfn
		a.free[zone].valid = true
		a.count[zone]++
	}
}

func (a *Allocator) index(pfn mem.PFN) (int, bool) {
	if pfn < a.startPFN {
		return 0, false
	}
	idx := int(pfn - a.startPFN)
	if idx >= len(a.frames) {
		return 0, false
	}
	return idx, true
}

// AllocFrame reserves one free frame from zone and returns it with
// refcount 1. The caller owns the returned frame until it calls FreeFrame or
// Refdown drops it to 0.
func (a *Allocator) AllocFrame(zone Zone) (mem.PFN, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	fl := &a.free[zone]
	if !fl.valid {
		return mem.PFNInvalid, errno.New(errno.NoMem, "pmm.AllocFrame")
	}

	pfn := fl.head
	idx, ok := a.index(pfn)
	if !ok {
		return mem.PFNInvalid, errno.New(errno.NoMem, "pmm.AllocFrame")
	}

	fl.head = a.frames[idx].next
	a.count[zone]--
	if a.count[zone] == 0 {
		fl.valid = false
	}

	a.frames[idx].allocated = true
	a.frames[idx].refcount = 1
	return pfn, nil
}

// AllocFrames reserves a physically contiguous run of n frames from
// zone. It scans the frame table directly for the first run of n
// consecutive, free, unprotected frames classified into zone, then
// unlinks each one from the zone's free list. It never compacts or
// relocates existing allocations to make room: a fragmented zone that
// has n free frames but no contiguous run of that size fails outright.
func (a *Allocator) AllocFrames(zone Zone, n int) ([]mem.PFN, error) {
	if n <= 0 {
		return nil, errno.New(errno.InvalidArg, "pmm.AllocFrames")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	runStart := -1
	runLen := 0
	for i := 0; i < len(a.frames); i++ {
		pfn := a.startPFN + mem.PFN(i)
		f := &a.frames[i]
		if f.allocated || f.protected || classify(pfn.Addr()) != zone {
			runStart = -1
			runLen = 0
			continue
		}
		if runLen == 0 {
			runStart = i
		}
		runLen++
		if runLen == n {
			break
		}
	}
	if runLen < n {
		return nil, errno.New(errno.NoMem, "pmm.AllocFrames")
	}

	out := make([]mem.PFN, n)
	for i := 0; i < n; i++ {
		idx := runStart + i
		pfn := a.startPFN + mem.PFN(idx)
		if !a.unlinkFreeLocked(zone, pfn) {
			panic("pmm: contiguous run frame missing from free list")
		}
		a.frames[idx].allocated = true
		a.frames[idx].refcount = 1
		out[i] = pfn
	}
	return out, nil
}

// unlinkFreeLocked removes pfn from zone's free list, walking at most
// count[zone] links since the list carries no end-of-list sentinel
// distinct from a valid PFN. Callers must hold a.mu.
func (a *Allocator) unlinkFreeLocked(zone Zone, pfn mem.PFN) bool {
	fl := &a.free[zone]
	if !fl.valid {
		return false
	}
	if fl.head == pfn {
		idx, ok := a.index(pfn)
		if !ok {
			return false
		}
		fl.head = a.frames[idx].next
		a.count[zone]--
		if a.count[zone] == 0 {
			fl.valid = false
		}
		return true
	}
	prev := fl.head
	for i := 1; i < a.count[zone]; i++ {
		prevIdx, ok := a.index(prev)
		if !ok {
			return false
		}
		next := a.frames[prevIdx].next
		if next == pfn {
			nextIdx, ok := a.index(next)
			if !ok {
				return false
			}
			a.frames[prevIdx].next = a.frames[nextIdx].next
			a.count[zone]--
			return true
		}
		prev = next
	}
	return false
}

// FreeFrame drops the frame's refcount to 0 and returns it to its zone's
// free list. Calling FreeFrame on an already-free frame or on a frame with
// refcount > 1 panics: those are invariant violations, not ordinary
// errors, per the kernel's error-handling policy.
func (a *Allocator) FreeFrame(pfn mem.PFN) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freeLocked(pfn)
}

func (a *Allocator) freeLocked(pfn mem.PFN) {
	idx, ok := a.index(pfn)
	if !ok {
		panic("pmm: free of out-of-range frame")
	}

	f := &a.frames[idx]
	if f.protected {
		early.Printf("pmm: warning: ignoring free of protected frame %x\n", uint64(pfn))
		return
	}
	if !f.allocated || f.refcount != 1 {
		panic("pmm: double free or free of frame with refcount != 1")
	}

	f.allocated = false
	f.refcount = 0

	zone := classify(pfn.Addr())
	fl := &a.free[zone]
	f.next = fl.head
	fl.head = pfn
	fl.valid = true
	a.count[zone]++
}

// Refcnt returns the current reference count of pfn.
func (a *Allocator) Refcnt(pfn mem.PFN) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx, ok := a.index(pfn)
	if !ok {
		return 0
	}
	return int(a.frames[idx].refcount)
}

// Refup increments pfn's reference count, for example when a COW fork
// shares a frame between two address spaces.
func (a *Allocator) Refup(pfn mem.PFN) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx, ok := a.index(pfn)
	if !ok {
		panic("pmm: refup of out-of-range frame")
	}
	f := &a.frames[idx]
	if !f.allocated {
		panic("pmm: refup of unallocated frame")
	}
	f.refcount++
}

// Refdown decrements pfn's reference count and frees it once it reaches
// zero, returning true if the frame was freed.
func (a *Allocator) Refdown(pfn mem.PFN) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx, ok := a.index(pfn)
	if !ok {
		panic("pmm: refdown of out-of-range frame")
	}
	f := &a.frames[idx]
	if !f.allocated || f.refcount == 0 {
		panic("pmm: refdown of unallocated frame")
	}

	if f.refcount == 1 {
		a.freeLocked(pfn)
		return true
	}
	f.refcount--
	return false
}

// ProtectFrame marks pfn as permanently unavailable to the allocator,
// removing it from its zone's free list if present. Used for frames that
// belong to MMIO apertures discovered after Init.
func (a *Allocator) ProtectFrame(pfn mem.PFN) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx, ok := a.index(pfn)
	if !ok {
		return
	}
	f := &a.frames[idx]
	if f.protected {
		return
	}
	if !f.allocated {
		a.unlinkFreeLocked(classify(pfn.Addr()), pfn)
	}
	f.protected = true
}

// IsProtected reports whether pfn is currently marked ineligible for
// allocation, whether because Init reserved it, a later ProtectFrame
// call did, or it falls outside the managed range entirely.
func (a *Allocator) IsProtected(pfn mem.PFN) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx, ok := a.index(pfn)
	if !ok {
		return true
	}
	return a.frames[idx].protected
}

// SetHeapReservedRange protects the physical frames backing the virtual
// range [lo, hi) in the address space translate resolves against.
// translate is injected by the caller (ordinarily hal.MMU.Translate)
// rather than called directly, since pmm sits below hal and vmm in the
// composition order and cannot import either; this mirrors how
// vmm.SetTablePtrFn lets an outer layer supply what a lower one cannot
// reach on its own.
func (a *Allocator) SetHeapReservedRange(lo, hi mem.Vaddr, translate func(mem.Vaddr) (mem.Paddr, bool)) error {
	if hi <= lo {
		return errno.New(errno.InvalidArg, "pmm.SetHeapReservedRange")
	}
	step := mem.Vaddr(mem.PageSize)
	for v := lo.AlignDown(step); v < hi; v += step {
		paddr, ok := translate(v)
		if !ok {
			return errno.New(errno.NotMapped, "pmm.SetHeapReservedRange")
		}
		a.ProtectFrame(paddr.PFN())
	}
	return nil
}

// UnprotectFrame reverses ProtectFrame, returning the frame to its zone's
// free list. If the frame is currently allocated, only the protected mark
// is cleared; the frame goes back to the free list when it is freed.
func (a *Allocator) UnprotectFrame(pfn mem.PFN) {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx, ok := a.index(pfn)
	if !ok {
		return
	}
	f := &a.frames[idx]
	if !f.protected || f.allocated {
		f.protected = false
		return
	}
	f.protected = false
	zone := classify(pfn.Addr())
	fl := &a.free[zone]
	f.next = fl.head
	fl.head = pfn
	fl.valid = true
	a.count[zone]++
}

// Free reports the number of free frames remaining in zone.
func (a *Allocator) Free(zone Zone) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count[zone]
}
