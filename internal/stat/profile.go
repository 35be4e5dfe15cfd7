package stat

import (
	"github.com/google/pprof/profile"

	"github.com/castorworks/CastorOS-sub006/internal/syscall"
)

// syscallNames labels samples in the exported profile. Unlabeled numbers
// still show up keyed by their raw value, so this list does not need to
// be exhaustive.
var syscallNames = map[syscall.Number]string{
	syscall.SysExit:    "exit",
	syscall.SysFork:    "fork",
	syscall.SysExecve:  "execve",
	syscall.SysGetpid:  "getpid",
	syscall.SysOpen:    "open",
	syscall.SysClose:   "close",
	syscall.SysRead:    "read",
	syscall.SysWrite:   "write",
	syscall.SysBrk:     "brk",
	syscall.SysMmap:    "mmap",
	syscall.SysMunmap:  "munmap",
	syscall.SysSocket:  "socket",
}

// ToProfile serializes the registry's counters into a pprof profile with
// a single "count" sample type: each non-zero syscall count is a sample
// labeled "number", and the scheduler switch, scheduler runtime (CPU
// cycles), IRQ and page-fault counters are samples labeled "kind". The D_PROF device streams the result back to user land so
// existing pprof tooling can visualize kernel activity without a
// bespoke format.
func (r *Registry) ToProfile() *profile.Profile {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "count", Unit: "count"},
		},
		Function: []*profile.Function{},
		Location: []*profile.Location{},
	}

	r.syscallGuard.Lock()
	defer r.syscallGuard.Unlock()

	var fnID, locID uint64
	for n, c := range r.syscallCount {
		count := c.Get()
		if count == 0 {
			continue
		}
		fnID++
		locID++
		name := syscallNames[n]
		if name == "" {
			name = "syscall"
		}
		fn := &profile.Function{ID: fnID, Name: name}
		loc := &profile.Location{ID: locID, Line: []profile.Line{{Function: fn}}}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{count},
			Label:    map[string][]string{"number": {name}},
		})
	}

	p.Sample = append(p.Sample, &profile.Sample{
		Value: []int64{r.SchedSwitches.Get()},
		Label: map[string][]string{"kind": {"sched_switches"}},
	})
	p.Sample = append(p.Sample, &profile.Sample{
		Value: []int64{r.SchedRuntime.Get()},
		Label: map[string][]string{"kind": {"sched_runtime_cycles"}},
	})
	p.Sample = append(p.Sample, &profile.Sample{
		Value: []int64{r.IRQCount.Get()},
		Label: map[string][]string{"kind": {"irq_count"}},
	})
	p.Sample = append(p.Sample, &profile.Sample{
		Value: []int64{r.PageFaults.Get()},
		Label: map[string][]string{"kind": {"page_faults"}},
	})

	return p
}
