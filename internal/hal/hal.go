// Package hal defines the architecture-neutral surface every per-ISA
// backend (internal/hal/amd64, internal/hal/i386, internal/hal/arm64)
// implements: a compile-time capability table plus the MMU, IRQ, Context
// and Syscall facet interfaces. The kernel entrypoint selects a backend
// through a build-tag-guarded import and never references an ISA package
// directly outside of cmd/castoros.
package hal

import (
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pte"
)

// Capabilities describes what one instruction set's MMU and CPU can do.
// Every field is a compile-time constant for a given architecture; there
// is exactly one Capabilities value per build.
type Capabilities struct {
	HugePages        bool
	NX               bool
	PortIO           bool
	CacheCoherentDMA bool
	IOMMU            bool
	SMP              bool
	FPU              bool
	SIMD             bool
	PageTableLevels  int
	PageSizes        []mem.Size
	PhysAddrBits     int
	VirtAddrBits     int
	KernelBase       mem.Vaddr
	UserSpaceEnd     mem.Vaddr
	GPRCount         int
	GPRSize          int
	ContextSize      int
	ArchName         string
}

// Cap names one of Capabilities' boolean fields, for use with Has.
type Cap int

const (
	CapHugePages Cap = iota
	CapNX
	CapPortIO
	CapCacheCoherentDMA
	CapIOMMU
	CapSMP
	CapFPU
	CapSIMD
)

// Has is the uniform accessor for Capabilities' boolean fields, so
// callers that only know which capability they want at runtime don't
// need a type switch over the struct.
func (c Capabilities) Has(cap Cap) bool {
	switch cap {
	case CapHugePages:
		return c.HugePages
	case CapNX:
		return c.NX
	case CapPortIO:
		return c.PortIO
	case CapCacheCoherentDMA:
		return c.CacheCoherentDMA
	case CapIOMMU:
		return c.IOMMU
	case CapSMP:
		return c.SMP
	case CapFPU:
		return c.FPU
	case CapSIMD:
		return c.SIMD
	default:
		return false
	}
}

// MMU is the facet covering page table management: mapping, unmapping,
// querying and TLB control.
type MMU interface {
	Map(root mem.PFN, v mem.Vaddr, frame mem.PFN, flags pte.Flag) error
	Unmap(root mem.PFN, v mem.Vaddr) error
	Translate(root mem.PFN, v mem.Vaddr) (mem.Paddr, bool)

	// Protect applies set and clears clear on the leaf PTE mapping v,
	// leaving the physical address untouched. Setting COW implicitly
	// clears WRITE; clearing COW does not implicitly set WRITE back —
	// the caller decides whether the page becomes writable again.
	Protect(root mem.PFN, v mem.Vaddr, set, clear pte.Flag) error

	FlushTLBEntry(v mem.Vaddr)
	FlushTLBAll()
	SwitchAddrSpace(root mem.PFN)
	ActiveAddrSpace() mem.PFN
}

// IRQLine identifies a physical interrupt line or exception vector in an
// architecture-neutral way; the HAL backend maps it to the real vector
// number or GIC line.
type IRQLine int

// ExceptionHandler is invoked for a CPU exception or IRQ. pc is the
// trapped program counter; errorCode is the hardware error code for
// exceptions that provide one (0 otherwise).
type ExceptionHandler func(line IRQLine, errorCode uint64, pc mem.Vaddr)

// IRQ is the facet covering interrupt and exception registration.
type IRQ interface {
	Register(line IRQLine, handler ExceptionHandler)
	EnableInterrupts()
	DisableInterrupts()
	InterruptsEnabled() bool
}

// Context is the facet covering CPU context (register set) management for
// task creation and context switching.
type Context interface {
	ContextSize() int
	InitContext(ctx []byte, entry mem.Vaddr, stackTop mem.Vaddr, kernelMode bool)
	SwitchContext(from, to []byte)
}

// SyscallArgs is the uniform view of a syscall's arguments, always
// extracted from the trap frame by the HAL; the dispatcher never touches
// registers directly.
type SyscallArgs struct {
	Number uint64
	Args   [6]uint64
	Extra  mem.Vaddr
}

// Syscall is the facet covering syscall entry: extracting arguments from
// the trap frame and writing back a return value.
type Syscall interface {
	ExtractArgs(trapFrame []byte) SyscallArgs
	SetReturn(trapFrame []byte, value int64)
}

// Backend bundles every facet a HAL implementation provides plus its
// Capabilities table. cmd/castoros selects exactly one Backend at init,
// chosen by build tag.
type Backend interface {
	Capabilities() Capabilities
	MMU() MMU
	IRQ() IRQ
	Context() Context
	Syscall() Syscall
}

var active Backend

// SetBackend installs the active architecture backend. Called once by
// cmd/castoros during early boot, before any other HAL call.
func SetBackend(b Backend) { active = b }

// Active returns the currently installed backend.
func Active() Backend { return active }
