package syscall

import "github.com/castorworks/CastorOS-sub006/internal/hal"

// FromHAL converts the HAL facet's extracted argument record into the
// dispatcher's Args, decoupling Table from any particular hal.Syscall
// implementation.
func FromHAL(a hal.SyscallArgs) Args {
	return Args{Number: a.Number, Args: a.Args, Extra: uintptr(a.Extra)}
}

// Handle extracts arguments from trapFrame via the active syscall
// facet, dispatches them, and writes the result back. Trapping into
// the arch stub that builds trapFrame in the first place is the
// caller's responsibility.
func Handle(sys hal.Syscall, t *Table, trapFrame []byte) {
	args := FromHAL(sys.ExtractArgs(trapFrame))
	ret := t.Dispatch(args)
	sys.SetReturn(trapFrame, ret)
}
