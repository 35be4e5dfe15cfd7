//go:build 386

package i386

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

// backend bundles the i686 facets behind hal.Backend.
type backend struct {
	caps    hal.Capabilities
	mmu     *mmu
	irq     *irq
	context *context
	syscall *syscall
}

// NewBackend wires the i686 HAL facets around a shared frame allocator.
func NewBackend(alloc *pmm.Allocator, zone pmm.Zone) *backend {
	return &backend{
		caps: hal.Capabilities{
			HugePages:        true, // PSE 4MiB pages
			NX:               false,
			PortIO:           true,
			CacheCoherentDMA: true,
			IOMMU:            false,
			SMP:              false,
			FPU:              true,
			SIMD:             false,
			PageTableLevels:  2,
			PageSizes:        []mem.Size{mem.PageSize, 4 * mem.Mb},
			PhysAddrBits:     mem.PhysAddrBits,
			VirtAddrBits:     mem.VirtAddrBits,
			KernelBase:       mem.Vaddr(0xc0000000),
			UserSpaceEnd:     mem.Vaddr(0xbfffffff),
			GPRCount:         gprCount,
			GPRSize:          4,
			ContextSize:      ctxSize,
			ArchName:         "i386",
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
