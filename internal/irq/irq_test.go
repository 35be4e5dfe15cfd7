package irq

import (
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// fakeIRQBackend is a minimal hal.IRQ test double that records the
// handler passed to Register and lets the test invoke it directly,
// standing in for a real trap entry.
type fakeIRQBackend struct {
	handlers map[hal.IRQLine]hal.ExceptionHandler
}

func newFakeIRQBackend() *fakeIRQBackend {
	return &fakeIRQBackend{handlers: map[hal.IRQLine]hal.ExceptionHandler{}}
}

func (f *fakeIRQBackend) Register(line hal.IRQLine, h hal.ExceptionHandler) {
	f.handlers[line] = h
}
func (f *fakeIRQBackend) EnableInterrupts()       {}
func (f *fakeIRQBackend) DisableInterrupts()      {}
func (f *fakeIRQBackend) InterruptsEnabled() bool { return true }

func (f *fakeIRQBackend) fire(line hal.IRQLine, errorCode uint64, pc mem.Vaddr) {
	f.handlers[line](line, errorCode, pc)
}

func TestRegisterRequiresMappedLine(t *testing.T) {
	table := &Table{}
	backend := newFakeIRQBackend()
	if table.Register(backend, Timer, func(any, uint64, mem.Vaddr) {}, nil) {
		t.Error("Register should fail for an unmapped logical IRQ")
	}
}

func TestDispatchInvokesHandlerWithData(t *testing.T) {
	table := &Table{}
	backend := newFakeIRQBackend()
	table.MapLine(Keyboard, hal.IRQLine(33))

	type payload struct{ name string }
	want := &payload{name: "ps2"}

	var gotData any
	var gotPC mem.Vaddr
	table.Register(backend, Keyboard, func(data any, errorCode uint64, pc mem.Vaddr) {
		gotData = data
		gotPC = pc
	}, want)

	backend.fire(hal.IRQLine(33), 0, mem.Vaddr(0xdeadbeef))

	if gotData != any(want) {
		t.Errorf("handler data = %v, want %v", gotData, want)
	}
	if gotPC != mem.Vaddr(0xdeadbeef) {
		t.Errorf("handler pc = %#x", gotPC)
	}
}

func TestInInterruptReflectsNesting(t *testing.T) {
	table := &Table{}
	backend := newFakeIRQBackend()
	table.MapLine(Timer, hal.IRQLine(32))

	var nestedDuringHandler bool
	table.Register(backend, Timer, func(any, uint64, mem.Vaddr) {
		nestedDuringHandler = table.InInterrupt()
	}, nil)

	if table.InInterrupt() {
		t.Fatal("InInterrupt should be false before any dispatch")
	}
	backend.fire(hal.IRQLine(32), 0, mem.Vaddr(0))
	if !nestedDuringHandler {
		t.Error("InInterrupt should be true while the handler runs")
	}
	if table.InInterrupt() {
		t.Error("InInterrupt should be false after dispatch returns")
	}
}
