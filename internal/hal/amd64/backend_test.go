package amd64

import (
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

func TestNewBackendReportsAmd64Capabilities(t *testing.T) {
	alloc := &pmm.Allocator{}
	alloc.Init([]pmm.Region{{Base: 0, Length: 64 * mem.PageSize}}, nil)

	b := NewBackend(alloc, pmm.ZoneNormal)
	caps := b.Capabilities()

	if caps.ArchName != "amd64" {
		t.Errorf("ArchName = %q, want amd64", caps.ArchName)
	}
	if caps.PageTableLevels != 4 {
		t.Errorf("PageTableLevels = %d, want 4", caps.PageTableLevels)
	}
	if !caps.NX {
		t.Error("amd64 backend should report NX support")
	}
	if b.MMU() == nil || b.IRQ() == nil || b.Context() == nil || b.Syscall() == nil {
		t.Error("NewBackend left a facet nil")
	}
}
