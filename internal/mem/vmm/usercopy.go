package vmm

import (
	"unsafe"

	"github.com/castorworks/CastorOS-sub006/internal/errno"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pte"
)

const maxUserString = 4096

// userPage resolves the kernel-accessible byte slice backing one page of
// uva in as, faulting it in first if needed. It is the generalized form
// of biscuit's Userdmap8_inner: that function walked the pmap directly
// and called Sys_pgfault on a miss; here the walker and HandleFault are
// already architecture-neutral so the same two steps compose directly.
func (m *Manager) userPage(as *AddrSpace, uva mem.Vaddr, write bool) ([]byte, error) {
	page := uva.AlignDown(mem.Vaddr(mem.PageSize))

	entry, ok := m.Walker.Lookup(as.Root, page)
	if !ok || !pte.Has(m.Walker.Enc, entry, pte.PRESENT) || (write && !pte.Has(m.Walker.Enc, entry, pte.WRITE)) {
		as.mu.Unlock()
		err := m.HandleFault(as, page, write)
		as.mu.Lock()
		if err != nil {
			return nil, err
		}
		entry, ok = m.Walker.Lookup(as.Root, page)
		if !ok {
			return nil, errno.New(errno.NotMapped, "vmm.userPage")
		}
	}

	pfn := m.Walker.Enc.Addr(entry).PFN()
	return unsafe.Slice((*byte)(tablePtrFn(pfn)), mem.PageSize), nil
}

// CopyFromUser reads len(dst) bytes starting at uva in as into dst,
// crossing page boundaries and faulting in pages as needed. Mirrors
// biscuit's User2k.
func (m *Manager) CopyFromUser(as *AddrSpace, uva mem.Vaddr, dst []byte) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	for len(dst) > 0 {
		page, err := m.userPage(as, uva, false)
		if err != nil {
			return err
		}
		off := uva.PageOffset()
		n := copy(dst, page[off:])
		dst = dst[n:]
		uva += mem.Vaddr(n)
	}
	return nil
}

// CopyToUser writes src into as starting at uva, faulting in and
// copy-on-writing pages as needed. Mirrors biscuit's K2user.
func (m *Manager) CopyToUser(as *AddrSpace, uva mem.Vaddr, src []byte) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	for len(src) > 0 {
		page, err := m.userPage(as, uva, true)
		if err != nil {
			return err
		}
		off := uva.PageOffset()
		n := copy(page[off:], src)
		src = src[n:]
		uva += mem.Vaddr(n)
	}
	return nil
}

// CopyUserString reads a NUL-terminated string from uva, up to maxLen
// bytes (excluding the terminator). Mirrors biscuit's Userstr.
func (m *Manager) CopyUserString(as *AddrSpace, uva mem.Vaddr, maxLen int) (string, error) {
	if maxLen <= 0 || maxLen > maxUserString {
		maxLen = maxUserString
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	buf := make([]byte, 0, 64)
	for len(buf) < maxLen {
		page, err := m.userPage(as, uva, false)
		if err != nil {
			return "", err
		}
		off := uva.PageOffset()
		chunk := page[off:]

		for _, b := range chunk {
			if b == 0 {
				return string(buf), nil
			}
			buf = append(buf, b)
			if len(buf) == maxLen {
				return string(buf), nil
			}
		}
		uva += mem.Vaddr(len(chunk))
	}
	return string(buf), nil
}
