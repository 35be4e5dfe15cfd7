package vmm

import (
	"testing"
	"unsafe"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pte"
)

const testFrameCount = 64

// newTestManager wires a Manager to an in-process byte-slice arena instead
// of real physical memory, overriding tablePtrFn the same way gopheros's
// vmm tests override ptePtrFn.
func newTestManager(t *testing.T) *Manager {
	t.Helper()

	backing := make([][mem.PageSize]byte, testFrameCount)
	prevTablePtrFn := tablePtrFn
	tablePtrFn = func(pfn mem.PFN) unsafe.Pointer {
		return unsafe.Pointer(&backing[pfn][0])
	}
	t.Cleanup(func() { tablePtrFn = prevTablePtrFn })

	alloc := &pmm.Allocator{}
	alloc.Init([]pmm.Region{{Base: 0, Length: mem.Size(testFrameCount) * mem.PageSize}}, nil)

	return &Manager{
		Walker: Walker{Enc: pte.AMD64, Levels: 4, Entries: 512},
		Alloc:  alloc,
		Zone:   pmm.ZoneDMA,
	}
}

func TestFaultInstallsWritableFrame(t *testing.T) {
	m := newTestManager(t)
	as, err := m.CreateAddrSpace()
	if err != nil {
		t.Fatalf("CreateAddrSpace() failed: %v", err)
	}

	base := mem.Vaddr(0x1000 * mem.PageSize)
	if _, err := as.Mmap(base, mem.Size(mem.PageSize), pte.PRESENT|pte.WRITE|pte.USER); err != nil {
		t.Fatalf("Mmap() failed: %v", err)
	}

	if err := m.HandleFault(as, base, true); err != nil {
		t.Fatalf("HandleFault() failed: %v", err)
	}

	entry, ok := m.Walker.Lookup(as.Root, base)
	if !ok {
		t.Fatalf("Lookup() after fault = not present, want present")
	}
	if !pte.Has(m.Walker.Enc, entry, pte.PRESENT|pte.WRITE) {
		t.Errorf("Lookup() entry flags = %v, want PRESENT|WRITE set", m.Walker.Enc.Flags(entry))
	}
}

func TestForkMarksSharedPagesCOW(t *testing.T) {
	m := newTestManager(t)
	parent, _ := m.CreateAddrSpace()
	base := mem.Vaddr(0x2000 * mem.PageSize)
	parent.Mmap(base, mem.Size(mem.PageSize), pte.PRESENT|pte.WRITE|pte.USER)
	if err := m.HandleFault(parent, base, true); err != nil {
		t.Fatalf("HandleFault() failed: %v", err)
	}

	child, err := m.ForkAddrSpace(parent)
	if err != nil {
		t.Fatalf("ForkAddrSpace() failed: %v", err)
	}

	parentEntry, _ := m.Walker.Lookup(parent.Root, base)
	childEntry, _ := m.Walker.Lookup(child.Root, base)

	if !pte.Has(m.Walker.Enc, parentEntry, pte.COW) || pte.HasAny(m.Walker.Enc, parentEntry, pte.WRITE) {
		t.Errorf("parent entry after fork: flags=%v, want COW set and WRITE clear", m.Walker.Enc.Flags(parentEntry))
	}
	if !pte.Has(m.Walker.Enc, childEntry, pte.COW) {
		t.Errorf("child entry after fork: flags=%v, want COW set", m.Walker.Enc.Flags(childEntry))
	}

	pfn := m.Walker.Enc.Addr(parentEntry).PFN()
	if got := m.Alloc.Refcnt(pfn); got != 2 {
		t.Errorf("Refcnt() of shared frame = %d, want 2", got)
	}
}

func TestCOWWriteFaultFastPathReclaimsUniqueFrame(t *testing.T) {
	m := newTestManager(t)
	as, _ := m.CreateAddrSpace()
	base := mem.Vaddr(0x3000 * mem.PageSize)
	as.Mmap(base, mem.Size(mem.PageSize), pte.PRESENT|pte.WRITE|pte.USER)
	m.HandleFault(as, base, true)

	entryBefore, _ := m.Walker.Lookup(as.Root, base)
	pfnBefore := m.Walker.Enc.Addr(entryBefore).PFN()

	// Simulate an artificially write-protected COW entry with refcount 1
	// (e.g. after Mprotect downgraded it), which must be reclaimed
	// in-place rather than copied.
	ptr, _ := m.Walker.EntryPtr(as.Root, base, m.allocTable)
	*ptr = m.Walker.Enc.Modify(*ptr, pte.COW, pte.WRITE)

	if err := m.HandleFault(as, base, true); err != nil {
		t.Fatalf("HandleFault() failed: %v", err)
	}

	entryAfter, _ := m.Walker.Lookup(as.Root, base)
	pfnAfter := m.Walker.Enc.Addr(entryAfter).PFN()

	if pfnAfter != pfnBefore {
		t.Errorf("fast-path COW resolve changed frame: before=%d after=%d", pfnBefore, pfnAfter)
	}
	if !pte.Has(m.Walker.Enc, entryAfter, pte.WRITE) || pte.HasAny(m.Walker.Enc, entryAfter, pte.COW) {
		t.Errorf("entry after fast-path resolve: flags=%v, want WRITE set and COW clear", m.Walker.Enc.Flags(entryAfter))
	}
}

func TestCOWWriteFaultSlowPathCopiesSharedFrame(t *testing.T) {
	m := newTestManager(t)
	parent, _ := m.CreateAddrSpace()
	base := mem.Vaddr(0x4000 * mem.PageSize)
	parent.Mmap(base, mem.Size(mem.PageSize), pte.PRESENT|pte.WRITE|pte.USER)
	m.HandleFault(parent, base, true)

	entryBefore, _ := m.Walker.Lookup(parent.Root, base)
	pfnBefore := m.Walker.Enc.Addr(entryBefore).PFN()

	child, err := m.ForkAddrSpace(parent)
	if err != nil {
		t.Fatalf("ForkAddrSpace() failed: %v", err)
	}

	if err := m.HandleFault(child, base, true); err != nil {
		t.Fatalf("HandleFault() on child failed: %v", err)
	}

	childEntry, _ := m.Walker.Lookup(child.Root, base)
	childPFN := m.Walker.Enc.Addr(childEntry).PFN()

	if childPFN == pfnBefore {
		t.Errorf("slow-path COW resolve reused the shared frame instead of copying")
	}
	if !pte.Has(m.Walker.Enc, childEntry, pte.WRITE) || pte.HasAny(m.Walker.Enc, childEntry, pte.COW) {
		t.Errorf("child entry after slow-path resolve: flags=%v, want WRITE set and COW clear", m.Walker.Enc.Flags(childEntry))
	}

	if got := m.Alloc.Refcnt(pfnBefore); got != 1 {
		t.Errorf("Refcnt() of original frame after child copy-out = %d, want 1", got)
	}

	parentEntry, _ := m.Walker.Lookup(parent.Root, base)
	if !pte.Has(m.Walker.Enc, parentEntry, pte.COW) {
		t.Errorf("parent entry lost COW status after child resolved its own fault")
	}
}

func TestCopyToAndFromUser(t *testing.T) {
	m := newTestManager(t)
	as, _ := m.CreateAddrSpace()
	base := mem.Vaddr(0x5000 * mem.PageSize)
	as.Mmap(base, mem.Size(2*mem.PageSize), pte.PRESENT|pte.WRITE|pte.USER)

	want := []byte("hello from kernel space, spanning a page boundary maybe")
	uva := base + mem.Vaddr(mem.PageSize) - 8

	if err := m.CopyToUser(as, uva, want); err != nil {
		t.Fatalf("CopyToUser() failed: %v", err)
	}

	got := make([]byte, len(want))
	if err := m.CopyFromUser(as, uva, got); err != nil {
		t.Fatalf("CopyFromUser() failed: %v", err)
	}

	if string(got) != string(want) {
		t.Errorf("CopyFromUser() = %q, want %q", got, want)
	}
}

func TestCopyUserStringStopsAtNUL(t *testing.T) {
	m := newTestManager(t)
	as, _ := m.CreateAddrSpace()
	base := mem.Vaddr(0x6000 * mem.PageSize)
	as.Mmap(base, mem.Size(mem.PageSize), pte.PRESENT|pte.WRITE|pte.USER)

	raw := append([]byte("/bin/sh"), 0, 'X', 'X')
	if err := m.CopyToUser(as, base, raw); err != nil {
		t.Fatalf("CopyToUser() failed: %v", err)
	}

	s, err := m.CopyUserString(as, base, 64)
	if err != nil {
		t.Fatalf("CopyUserString() failed: %v", err)
	}
	if s != "/bin/sh" {
		t.Errorf("CopyUserString() = %q, want %q", s, "/bin/sh")
	}
}

func TestMunmapDropsFrameReference(t *testing.T) {
	m := newTestManager(t)
	as, _ := m.CreateAddrSpace()
	base := mem.Vaddr(0x7000 * mem.PageSize)
	as.Mmap(base, mem.Size(mem.PageSize), pte.PRESENT|pte.WRITE|pte.USER)
	m.HandleFault(as, base, true)

	entry, _ := m.Walker.Lookup(as.Root, base)
	pfn := m.Walker.Enc.Addr(entry).PFN()

	if err := m.Munmap(as, base); err != nil {
		t.Fatalf("Munmap() failed: %v", err)
	}

	if _, ok := m.Walker.Lookup(as.Root, base); ok {
		t.Errorf("Lookup() after Munmap() still reports the page present")
	}
	if got := m.Alloc.Refcnt(pfn); got != 0 {
		t.Errorf("Refcnt() after Munmap() = %d, want 0 (frame freed)", got)
	}
}

func TestSetTablePtrFnReturnsPrevious(t *testing.T) {
	prev := tablePtrFn
	replacement := func(pfn mem.PFN) unsafe.Pointer { return nil }

	got := SetTablePtrFn(replacement)
	if got == nil {
		t.Fatal("SetTablePtrFn returned a nil previous function")
	}

	SetTablePtrFn(prev)
}
