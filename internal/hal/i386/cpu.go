// Package i386 is the HAL backend for the 2-level i686 page table format
// (page directory + page table, no PAE). It mirrors internal/hal/amd64's
// structure and its use of swappable package variables standing in for
// hardware-only primitives, scaled down to i686's narrower register file
// and lack of hardware NX.
package i386

import "github.com/castorworks/CastorOS-sub006/internal/mem"

type cpuState struct {
	cr2            mem.Paddr
	cr3            mem.PFN
	interruptsOn   bool
	tlbFlushes     int
	tlbFlushAllCnt int
}

var state = &cpuState{}

var cpuidFn = func(leaf uint32) (uint32, uint32, uint32, uint32) {
	if leaf == 0 {
		return 1, 0x756e6547, 0x6c65746e, 0x49656e69 // "GenuineIntel"
	}
	return 0, 0, 0, 0
}

// IsIntel reports whether CPUID leaf 0 identifies an Intel processor.
func IsIntel() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x756e6547 && edx == 0x49656e69 && ecx == 0x6c65746e
}

// ReadCR2 returns the faulting address recorded by the last page fault.
func ReadCR2() mem.Paddr { return state.cr2 }

// SetCR2 records a fault address before dispatching to the page fault
// handler.
func SetCR2(addr mem.Paddr) { state.cr2 = addr }

// FlushTLBEntry invalidates a single TLB entry (INVLPG).
func FlushTLBEntry(v mem.Vaddr) { state.tlbFlushes++ }

// FlushTLBAll invalidates the entire TLB by reloading CR3.
func FlushTLBAll() { state.tlbFlushAllCnt++ }

// SwitchAddrSpace loads root as the active page directory (MOV CR3).
func SwitchAddrSpace(root mem.PFN) {
	state.cr3 = root
	FlushTLBAll()
}

// ActiveAddrSpace returns the currently loaded page directory.
func ActiveAddrSpace() mem.PFN { return state.cr3 }

// EnableInterrupts executes STI.
func EnableInterrupts() { state.interruptsOn = true }

// DisableInterrupts executes CLI.
func DisableInterrupts() { state.interruptsOn = false }

// InterruptsEnabled reports the current interrupt-enable flag.
func InterruptsEnabled() bool { return state.interruptsOn }

// Halt executes HLT in a loop.
func Halt() {
	for {
	}
}
