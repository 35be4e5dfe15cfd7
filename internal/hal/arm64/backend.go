//go:build arm64

package arm64

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

// backend bundles the ARM64 facets behind hal.Backend.
type backend struct {
	caps    hal.Capabilities
	mmu     *mmu
	irq     *irq
	context *context
	syscall *syscall
}

// NewBackend wires the ARM64 HAL facets around a shared frame allocator.
func NewBackend(alloc *pmm.Allocator, zone pmm.Zone) *backend {
	return &backend{
		caps: hal.Capabilities{
			HugePages:        true, // 2MiB block mappings at level 2
			NX:               true, // UXN/PXN
			PortIO:           false,
			CacheCoherentDMA: true,
			IOMMU:            false,
			SMP:              true,
			FPU:              true,
			SIMD:             true, // NEON mandatory in the base architecture
			PageTableLevels:  4,
			PageSizes:        []mem.Size{mem.PageSize, 2 * mem.Mb, 1024 * mem.Mb},
			PhysAddrBits:     mem.PhysAddrBits,
			VirtAddrBits:     mem.VirtAddrBits,
			KernelBase:       mem.Vaddr(0xffff000000000000),
			UserSpaceEnd:     mem.Vaddr(0x0000ffffffffffff),
			GPRCount:         gprCount,
			GPRSize:          8,
			ContextSize:      ctxSize,
			ArchName:         "arm64",
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
