package kernel

import "github.com/castorworks/CastorOS-sub006/internal/kfmt/early"

var (
	// haltFn is the arch-specific "stop the CPU" primitive. It is a
	// function variable so tests can intercept it instead of actually
	// halting the process running the test binary.
	haltFn = func() {}

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// SetHaltFunc installs the arch-specific halt primitive (hlt / wfi loop).
// Called once during early arch bring-up.
func SetHaltFunc(fn func()) {
	haltFn = fn
}

// Panic prints the supplied error to the early console and halts the
// CPU. Panic never returns. It is reserved for invariant violations the
// kernel cannot correct, such as a double-free of a frame with refcount
// 0, or a fault in the kernel direct map.
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	default:
		err = errRuntimePanic
	}

	early.Printf("\n-----------------------------------\n")
	if err != nil {
		early.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	early.Printf("*** kernel panic: system halted ***")
	early.Printf("\n-----------------------------------\n")

	haltFn()
}
