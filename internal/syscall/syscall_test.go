package syscall

import (
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/errno"
)

func TestDispatchCallsRegisteredHandler(t *testing.T) {
	table := NewTable()
	var gotArgs Args
	table.Register(SysGetpid, func(a Args) int64 {
		gotArgs = a
		return 42
	})

	ret := table.Dispatch(Args{Number: uint64(SysGetpid), Args: [6]uint64{1, 2, 3, 4, 5, 6}})

	if ret != 42 {
		t.Errorf("Dispatch return = %d, want 42", ret)
	}
	if gotArgs.Args != [6]uint64{1, 2, 3, 4, 5, 6} {
		t.Errorf("handler received %v", gotArgs.Args)
	}
}

func TestDispatchUnregisteredNumberReturnsENOSYS(t *testing.T) {
	table := NewTable()
	ret := table.Dispatch(Args{Number: 0xffff})
	if ret != int64(errno.ENOSYS) {
		t.Errorf("Dispatch return = %d, want %d", ret, errno.ENOSYS)
	}
}

func TestDispatchCallsExactlyOneHandler(t *testing.T) {
	table := NewTable()
	calls := map[Number]int{}
	register := func(n Number) {
		table.Register(n, func(Args) int64 {
			calls[n]++
			return 0
		})
	}
	register(SysExit)
	register(SysFork)
	register(SysGetpid)

	table.Dispatch(Args{Number: uint64(SysFork)})

	if calls[SysFork] != 1 {
		t.Errorf("SysFork called %d times, want 1", calls[SysFork])
	}
	if calls[SysExit] != 0 || calls[SysGetpid] != 0 {
		t.Error("Dispatch invoked a handler other than the one matching Number")
	}
}

func TestSubsystemRangesAreDisjoint(t *testing.T) {
	ranges := []Number{SysExit, SysOpen, SysBrk, SysTime, SysKill, SysUname, SysSocket}
	for i, base := range ranges {
		for j, other := range ranges {
			if i == j {
				continue
			}
			if base == other {
				t.Errorf("subsystem ranges collide: %d == %d", base, other)
			}
		}
	}
}
