// Package amd64 is the HAL backend for the 4-level x86_64 page table
// format. Hardware primitives that would be a single instruction on real
// silicon (CPUID, CR2, TLB invalidation, CR3 switch) are Go functions
// backed by swappable package variables, the same indirection gopher-os
// uses in kernel/cpu/cpu_amd64.go (cpuidFn, flushTLBEntryFn) to keep its
// hardware-only primitives unit-testable; there, those vars wrap an
// assembly-linked body, while here — with no assembly in this build —
// they carry a small simulated CPU state so the backend is self-contained
// and the same test doubles exercise the real call sites.
package amd64

import "github.com/castorworks/CastorOS-sub006/internal/mem"

// cpuState models the subset of a real CPU's control registers this
// kernel cares about.
type cpuState struct {
	cr2            mem.Paddr
	cr3            mem.PFN
	interruptsOn   bool
	tlbFlushes     int
	tlbFlushAllCnt int
}

var state = &cpuState{}

// cpuidFn returns (eax, ebx, ecx, edx) for CPUID leaf. Tests override it
// to report a specific vendor string or feature bits.
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

// SetCR2 is called by the exception entry path (or, in this simulated
// backend, directly by a test) to record a fault address before
// dispatching to the page fault handler.
func SetCR2(addr mem.Paddr) { state.cr2 = addr }

// FlushTLBEntry invalidates a single TLB entry (INVLPG).
func FlushTLBEntry(v mem.Vaddr) { state.tlbFlushes++ }

// FlushTLBAll invalidates the entire TLB by reloading CR3.
func FlushTLBAll() { state.tlbFlushAllCnt++ }

// SwitchAddrSpace loads root as the active page table root (MOV CR3).
func SwitchAddrSpace(root mem.PFN) {
	state.cr3 = root
	FlushTLBAll()
}

// ActiveAddrSpace returns the currently loaded page table root.
func ActiveAddrSpace() mem.PFN { return state.cr3 }

// EnableInterrupts executes STI.
func EnableInterrupts() { state.interruptsOn = true }

// DisableInterrupts executes CLI.
func DisableInterrupts() { state.interruptsOn = false }

// InterruptsEnabled reports the current interrupt-enable flag.
func InterruptsEnabled() bool { return state.interruptsOn }

// Halt executes HLT in a loop. Tests never call this directly.
func Halt() {
	for {
	}
}
