package i386

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// irq implements hal.IRQ with a flat vector table, the same as the amd64
// backend; i686 has 256 IDT vectors too.
type irq struct {
	handlers [256]hal.ExceptionHandler
}

// NewIRQ builds the i686 IRQ facet.
func NewIRQ() *irq { return &irq{} }

func (r *irq) Register(line hal.IRQLine, handler hal.ExceptionHandler) {
	if line < 0 || int(line) >= len(r.handlers) {
		return
	}
	r.handlers[line] = handler
}

// Dispatch is called by the (simulated) trap entry path when vector line
// fires.
func (r *irq) Dispatch(line hal.IRQLine, errorCode uint64, pc mem.Vaddr) {
	if int(line) >= len(r.handlers) || r.handlers[line] == nil {
		return
	}
	r.handlers[line](line, errorCode, pc)
}

func (r *irq) EnableInterrupts()       { EnableInterrupts() }
func (r *irq) DisableInterrupts()      { DisableInterrupts() }
func (r *irq) InterruptsEnabled() bool { return InterruptsEnabled() }
