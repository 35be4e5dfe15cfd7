// Package irq provides the architecture-neutral logical interrupt
// namespace on top of internal/hal's per-ISA IRQ facet. It generalizes
// gopher-os's amd64-only, exception-only irq package (HandleException /
// HandleExceptionWithCode registering directly against hardware vector
// numbers) into a logical→physical mapping table plus an
// interrupt-nesting counter, so device drivers register against
// Logical values instead of knowing whether they're behind an 8259 PIC
// line or a GIC SPI.
package irq

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// Logical enumerates device classes independent of how any given ISA
// wires them to physical interrupt lines.
type Logical int

const (
	Timer Logical = iota
	Keyboard
	Serial0
	Serial1
	DiskPrimary
	DiskSecondary
	Network
	USB
	RTC
	Mouse

	logicalCount
)

// Handler is the logical-IRQ-facing callback, carrying the data pointer
// a device driver registered alongside itself rather than a raw trap
// frame — the HAL facet's ExceptionHandler is the native signature this
// package adapts into.
type Handler func(data any, errorCode uint64, pc mem.Vaddr)

type registration struct {
	handler Handler
	data    any
}

// Table owns the logical→physical mapping and dispatch bookkeeping for
// one architecture. The package-level Default is one such Table.
type Table struct {
	physical [logicalCount]hal.IRQLine
	mapped   [logicalCount]bool
	handlers [logicalCount]registration
	nesting  int32
}

// Default is the process-wide interrupt table. Registration is routed
// through an explicit struct, rather than bare package-level functions,
// so tests can construct independent tables instead of sharing global
// state.
var Default = &Table{}

// MapLine installs the given architecture's physical line/vector for a
// logical IRQ, e.g. MapLine(Timer, 32) for the i686/x86_64 PIC's
// remapped IRQ0. Register refuses a logical IRQ that has not been mapped.
func (t *Table) MapLine(l Logical, line hal.IRQLine) {
	t.physical[l] = line
	t.mapped[l] = true
}

// Register wraps handler (and its data pointer) into the HAL's native
// ExceptionHandler signature and installs it for logical IRQ l's mapped
// physical line, one generic adapter instead of per-IRQ wrapper
// boilerplate.
func (t *Table) Register(backend hal.IRQ, l Logical, handler Handler, data any) bool {
	if !t.mapped[l] {
		return false
	}
	t.handlers[l] = registration{handler: handler, data: data}
	line := t.physical[l]
	backend.Register(line, func(_ hal.IRQLine, errorCode uint64, pc mem.Vaddr) {
		t.dispatch(l, errorCode, pc)
	})
	return true
}

func (t *Table) dispatch(l Logical, errorCode uint64, pc mem.Vaddr) {
	t.nesting++
	defer func() { t.nesting-- }()

	reg := t.handlers[l]
	if reg.handler == nil {
		return
	}
	reg.handler(reg.data, errorCode, pc)
}

// InInterrupt reports whether the calling context is nested inside at
// least one interrupt handler.
func (t *Table) InInterrupt() bool { return t.nesting > 0 }
