// Package arm64 is the HAL backend for the 4-level, 4 KiB-granule
// ARMv8-A translation table format. It follows the same swappable
// function variable idiom as internal/hal/amd64 and internal/hal/i386
// for its hardware-only primitives (here: DFAR/FAR_EL1 equivalent,
// TLBI, TTBR switch, DAIF interrupt mask), and additionally models
// PSCI-based reset and power-off, since ARM has no INT3/triple-fault
// equivalent for those operations.
package arm64

import "github.com/castorworks/CastorOS-sub006/internal/mem"

type cpuState struct {
	far            mem.Paddr // fault address, mirrors FAR_EL1
	ttbr           mem.PFN   // active translation table base
	interruptsOn   bool
	tlbFlushes     int
	tlbFlushAllCnt int
	resetCount     int
	powerOffCount  int
}

var state = &cpuState{}

// ReadFAR returns the faulting address recorded by the last translation
// fault, mirroring FAR_EL1.
func ReadFAR() mem.Paddr { return state.far }

// SetFAR records a fault address before dispatching to the page fault
// handler.
func SetFAR(addr mem.Paddr) { state.far = addr }

// FlushTLBEntry invalidates a single TLB entry (TLBI VAE1).
func FlushTLBEntry(v mem.Vaddr) { state.tlbFlushes++ }

// FlushTLBAll invalidates the entire TLB (TLBI VMALLE1).
func FlushTLBAll() { state.tlbFlushAllCnt++ }

// SwitchAddrSpace loads root into TTBR0_EL1.
func SwitchAddrSpace(root mem.PFN) {
	state.ttbr = root
	FlushTLBAll()
}

// ActiveAddrSpace returns the currently loaded translation table base.
func ActiveAddrSpace() mem.PFN { return state.ttbr }

// EnableInterrupts clears the IRQ mask bit in DAIF.
func EnableInterrupts() { state.interruptsOn = true }

// DisableInterrupts sets the IRQ mask bit in DAIF.
func DisableInterrupts() { state.interruptsOn = false }

// InterruptsEnabled reports whether IRQs are currently unmasked.
func InterruptsEnabled() bool { return state.interruptsOn }

// Halt issues WFI in a loop.
func Halt() {
	for {
	}
}

// psciResetFn and psciPowerOffFn stand in for the SMC/HVC PSCI
// SYSTEM_RESET (0x84000009) and SYSTEM_OFF (0x84000008) calls; tests
// override them to observe that the reboot/poweroff path was taken
// without actually halting the test process.
var psciResetFn = func() { state.resetCount++ }
var psciPowerOffFn = func() { state.powerOffCount++ }

// Reset issues a PSCI SYSTEM_RESET call. It does not return on real
// hardware.
func Reset() { psciResetFn() }

// PowerOff issues a PSCI SYSTEM_OFF call. It does not return on real
// hardware.
func PowerOff() { psciPowerOffFn() }
