package amd64

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// irq implements hal.IRQ with a flat vector table indexed by hal.IRQLine,
// mirroring the HandleException/HandleExceptionWithCode registration
// style from gopher-os's kernel/irq package (there backed by an
// assembly-linked IDT, here by a Go slice since no assembly exists in
// this build).
type irq struct {
	handlers [256]hal.ExceptionHandler
}

// NewIRQ builds the amd64 IRQ facet.
func NewIRQ() *irq { return &irq{} }

func (r *irq) Register(line hal.IRQLine, handler hal.ExceptionHandler) {
	if line < 0 || int(line) >= len(r.handlers) {
		return
	}
	r.handlers[line] = handler
}

// Dispatch is called by the (simulated) trap entry path when vector line
// fires. It is exported so tests and the entrypoint can drive it directly
// without real hardware interrupts.
func (r *irq) Dispatch(line hal.IRQLine, errorCode uint64, pc mem.Vaddr) {
	if int(line) >= len(r.handlers) || r.handlers[line] == nil {
		return
	}
	r.handlers[line](line, errorCode, pc)
}

func (r *irq) EnableInterrupts()       { EnableInterrupts() }
func (r *irq) DisableInterrupts()      { DisableInterrupts() }
func (r *irq) InterruptsEnabled() bool { return InterruptsEnabled() }
