package stat

import (
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/syscall"
)

func TestToProfileIncludesOnlyNonZeroSyscallCounts(t *testing.T) {
	r := NewRegistry()
	r.RecordSyscall(syscall.SysGetpid)
	r.RecordSyscall(syscall.SysGetpid)

	p := r.ToProfile()

	var sawGetpid bool
	for _, s := range p.Sample {
		if names, ok := s.Label["number"]; ok && len(names) == 1 && names[0] == "getpid" {
			sawGetpid = true
			if len(s.Value) != 1 || s.Value[0] != 2 {
				t.Errorf("getpid sample value = %v, want [2]", s.Value)
			}
		}
	}
	if !sawGetpid {
		t.Error("ToProfile did not emit a sample for getpid")
	}
}

func TestToProfileEmitsSchedAndFaultSamplesEvenWhenZero(t *testing.T) {
	r := NewRegistry()
	p := r.ToProfile()

	kinds := map[string]bool{}
	for _, s := range p.Sample {
		if k, ok := s.Label["kind"]; ok && len(k) == 1 {
			kinds[k[0]] = true
		}
	}
	for _, want := range []string{"sched_switches", "sched_runtime_cycles", "irq_count", "page_faults"} {
		if !kinds[want] {
			t.Errorf("ToProfile missing sample kind %q", want)
		}
	}
}

func TestToProfileSampleTypeMatchesValueLength(t *testing.T) {
	r := NewRegistry()
	r.RecordSyscall(syscall.SysFork)
	p := r.ToProfile()

	if len(p.SampleType) != 1 {
		t.Fatalf("SampleType length = %d, want 1", len(p.SampleType))
	}
	for _, s := range p.Sample {
		if len(s.Value) != len(p.SampleType) {
			t.Errorf("sample value length %d != sample type length %d", len(s.Value), len(p.SampleType))
		}
	}
}
