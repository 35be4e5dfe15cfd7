//go:build amd64

package amd64

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

// backend bundles the amd64 facets behind hal.Backend. cmd/castoros
// constructs exactly one of these per build and installs it with
// hal.SetBackend before touching any other subsystem.
type backend struct {
	caps    hal.Capabilities
	mmu     *mmu
	irq     *irq
	context *context
	syscall *syscall
}

// NewBackend wires the amd64 HAL facets around a shared frame allocator.
// zone selects which PMM zone new page tables are carved from (normally
// pmm.ZoneNormal; DMA-incapable platforms never need anything else here
// since amd64 has no DMA addressing ceiling below 4GiB worth worrying
// about for page tables specifically).
func NewBackend(alloc *pmm.Allocator, zone pmm.Zone) *backend {
	return &backend{
		caps: hal.Capabilities{
			HugePages:        true,
			NX:               true,
			PortIO:           true,
			CacheCoherentDMA: true,
			IOMMU:            false,
			SMP:              true,
			FPU:              true,
			SIMD:             true,
			PageTableLevels:  4,
			PageSizes:        []mem.Size{mem.PageSize, 2 * mem.Mb, 1024 * mem.Mb},
			PhysAddrBits:     mem.PhysAddrBits,
			VirtAddrBits:     mem.VirtAddrBits,
			KernelBase:       mem.Vaddr(0xffffffff80000000),
			UserSpaceEnd:     mem.Vaddr(0x00007fffffffffff),
			GPRCount:         gprCount,
			GPRSize:          8,
			ContextSize:      ctxSize,
			ArchName:         "amd64",
		},
		mmu:     NewMMU(alloc, zone),
		irq:     NewIRQ(),
		context: NewContext(),
		syscall: NewSyscall(),
	}
}

func (b *backend) Capabilities() hal.Capabilities { return b.caps }
func (b *backend) MMU() hal.MMU                   { return b.mmu }
func (b *backend) IRQ() hal.IRQ                   { return b.irq }
func (b *backend) Context() hal.Context           { return b.context }
func (b *backend) Syscall() hal.Syscall           { return b.syscall }
