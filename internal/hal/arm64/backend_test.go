package arm64

import (
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

func TestNewBackendReportsArm64Capabilities(t *testing.T) {
	alloc := &pmm.Allocator{}
	alloc.Init([]pmm.Region{{Base: 0, Length: 64 * mem.PageSize}}, nil)

	b := NewBackend(alloc, pmm.ZoneNormal)
	caps := b.Capabilities()

	if caps.ArchName != "arm64" {
		t.Errorf("ArchName = %q, want arm64", caps.ArchName)
	}
	if caps.PageTableLevels != 4 {
		t.Errorf("PageTableLevels = %d, want 4", caps.PageTableLevels)
	}
	if !caps.NX {
		t.Error("arm64 backend should report NX (UXN/PXN) support")
	}
	if caps.PortIO {
		t.Error("arm64 has no legacy port I/O space")
	}
	if b.MMU() == nil || b.IRQ() == nil || b.Context() == nil || b.Syscall() == nil {
		t.Error("NewBackend left a facet nil")
	}
}
