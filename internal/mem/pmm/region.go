package pmm

import "github.com/castorworks/CastorOS-sub006/internal/mem"

// Zone partitions frames by the class of DMA they support. A zone request
// never crosses zone boundaries, following the same scheme most HALs use
// to keep ISA DMA and 64-bit-only devices out of each other's way.
type Zone int

const (
	// ZoneDMA covers frames below 16 MiB, reachable by legacy 24-bit DMA
	// controllers.
	ZoneDMA Zone = iota
	// ZoneNormal covers frames directly mapped into the kernel's linear
	// region.
	ZoneNormal
	// ZoneHigh covers frames outside the kernel direct map, only
	// reachable through a temporary mapping.
	ZoneHigh

	zoneCount
)

// zoneDMALimit is the upper bound, in bytes, of ZoneDMA.
const zoneDMALimit = 16 * mem.Mb

// Region describes one span of usable physical memory reported by the
// boot-info adapter, in the shape every architecture's loader (multiboot2
// memory map, DTB /memory node) reduces to.
type Region struct {
	Base   mem.Paddr
	Length mem.Size
}

// End returns the address one past the last byte of the region.
func (r Region) End() mem.Paddr { return r.Base + mem.Paddr(r.Length) }

func classify(addr mem.Paddr) Zone {
	switch {
	case addr < mem.Paddr(zoneDMALimit):
		return ZoneDMA
	case addr < mem.Paddr(directMapLimit):
		return ZoneNormal
	default:
		return ZoneHigh
	}
}

// directMapLimit is the size of the kernel's linear direct map
// (architecture- and boot-memory-size dependent), settable through
// SetDirectMapLimit; it defaults to a conservative 896 MiB, matching the
// classic x86 low/high memory split.
var directMapLimit mem.Size = 896 * mem.Mb

// SetDirectMapLimit configures the ZoneNormal/ZoneHigh boundary. Nothing
// in cmd/castoros or the HAL backends calls it, so the default applies.
func SetDirectMapLimit(limit mem.Size) {
	directMapLimit = limit
}
