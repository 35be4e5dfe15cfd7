package arm64

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// irq implements hal.IRQ for a GICv2/v3-style distributor with up to 256
// modeled interrupt IDs (real hardware has more; this kernel never
// registers handlers for SPIs above that range).
type irq struct {
	handlers [256]hal.ExceptionHandler
}

// NewIRQ builds the ARM64 IRQ facet.
func NewIRQ() *irq { return &irq{} }

func (r *irq) Register(line hal.IRQLine, handler hal.ExceptionHandler) {
	if line < 0 || int(line) >= len(r.handlers) {
		return
	}
	r.handlers[line] = handler
}

// Dispatch is called by the (simulated) exception vector table when
// interrupt line fires.
func (r *irq) Dispatch(line hal.IRQLine, errorCode uint64, pc mem.Vaddr) {
	if int(line) >= len(r.handlers) || r.handlers[line] == nil {
		return
	}
	r.handlers[line](line, errorCode, pc)
}

func (r *irq) EnableInterrupts()       { EnableInterrupts() }
func (r *irq) DisableInterrupts()      { DisableInterrupts() }
func (r *irq) InterruptsEnabled() bool { return InterruptsEnabled() }
