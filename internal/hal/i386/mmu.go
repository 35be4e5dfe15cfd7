package i386

import (
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pte"
	"github.com/castorworks/CastorOS-sub006/internal/mem/vmm"
)

// mmu adapts a vmm.Manager configured with the 2-level i686 encoder to
// the hal.MMU facet interface.
type mmu struct {
	manager *vmm.Manager
}

// NewMMU builds the i686 MMU facet around the given frame allocator.
func NewMMU(alloc *pmm.Allocator, zone pmm.Zone) *mmu {
	return &mmu{manager: &vmm.Manager{
		Walker: vmm.Walker{Enc: pte.I686, Levels: 2, Entries: 1024},
		Alloc:  alloc,
		Zone:   zone,
	}}
}

func (m *mmu) Manager() *vmm.Manager { return m.manager }

func (m *mmu) Map(root mem.PFN, v mem.Vaddr, frame mem.PFN, flags pte.Flag) error {
	ptr, err := m.manager.Walker.EntryPtr(root, v, func() (mem.PFN, error) {
		return m.manager.Alloc.AllocFrame(m.manager.Zone)
	})
	if err != nil {
		return err
	}
	*ptr = m.manager.Walker.Enc.Make(frame.Addr(), flags)
	return nil
}

func (m *mmu) Unmap(root mem.PFN, v mem.Vaddr) error {
	ptr, err := m.manager.Walker.EntryPtr(root, v, func() (mem.PFN, error) {
		return m.manager.Alloc.AllocFrame(m.manager.Zone)
	})
	if err != nil {
		return err
	}
	*ptr = 0
	FlushTLBEntry(v)
	return nil
}

func (m *mmu) Translate(root mem.PFN, v mem.Vaddr) (mem.Paddr, bool) {
	entry, ok := m.manager.Walker.Lookup(root, v)
	if !ok {
		return mem.PaddrInvalid, false
	}
	return m.manager.Walker.Enc.Addr(entry) + mem.Paddr(v.PageOffset()), true
}

// Protect changes the permission bits of an existing mapping in place:
// setting pte.COW implicitly clears pte.WRITE so a copy-on-write page
// can never be written in place; clearing pte.COW does not implicitly
// restore pte.WRITE.
func (m *mmu) Protect(root mem.PFN, v mem.Vaddr, set, clear pte.Flag) error {
	ptr, err := m.manager.Walker.EntryPtr(root, v, func() (mem.PFN, error) {
		return m.manager.Alloc.AllocFrame(m.manager.Zone)
	})
	if err != nil {
		return err
	}
	if set&pte.COW != 0 {
		clear |= pte.WRITE
	}
	*ptr = m.manager.Walker.Enc.Modify(*ptr, set, clear)
	FlushTLBEntry(v)
	return nil
}

func (m *mmu) FlushTLBEntry(v mem.Vaddr)    { FlushTLBEntry(v) }
func (m *mmu) FlushTLBAll()                 { FlushTLBAll() }
func (m *mmu) SwitchAddrSpace(root mem.PFN) { SwitchAddrSpace(root) }
func (m *mmu) ActiveAddrSpace() mem.PFN     { return ActiveAddrSpace() }
