// Command castoros is the kernel entrypoint. The rt0 assembly stub for
// the active architecture sets up a minimal stack and jumps here with
// the boot loader's handoff payload, and this function brings up every
// subsystem, lowest layer first, before handing control to the
// scheduler. Kmain never returns; if it does, that is itself a fatal
// error.
package main

import (
	"github.com/castorworks/CastorOS-sub006/internal/hal"
	"github.com/castorworks/CastorOS-sub006/internal/hal/bootinfo"
	"github.com/castorworks/CastorOS-sub006/internal/kernel"
	"github.com/castorworks/CastorOS-sub006/internal/kfmt/early"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
	ksync "github.com/castorworks/CastorOS-sub006/internal/sync"
	"github.com/castorworks/CastorOS-sub006/internal/task"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// scheduler is the system's single run queue, created during kmain and
// installed as the sync package's blocking backend.
var scheduler *task.Scheduler

// kmain performs arch-neutral bring-up: HAL backend selection has
// already happened (the caller builds backend around a PMM allocator
// that in turn needs the boot-info memory map, so PMM init happens
// first, ahead of hal.SetBackend). Everything from here on only touches
// the HAL facet interfaces, never a concrete per-ISA package, keeping
// kmain itself architecture-agnostic.
func kmain(info *bootinfo.BootInfo, backend hal.Backend) {
	hal.SetBackend(backend)
	caps := backend.Capabilities()
	early.Printf("Starting CastorOS (%s)\n", caps.ArchName)
	early.Printf("cmdline: %s\n", info.Cmdline)

	ksync.SetIRQControl(backend.IRQ())

	scheduler = task.NewScheduler()
	ksync.SetScheduler(scheduler)

	idle := scheduler.Spawn("idle", caps.ContextSize, nil, task.NewTask(0, "idle", caps.ContextSize, nil))
	idle.Priority = -1

	registerSyscalls(defaultSyscallTable)

	kernel.SetHaltFunc(haltFn)

	// The dispatcher loop (pick a task, switch context, return on the
	// next timer IRQ) lives on the real hardware return path and has no
	// host-testable equivalent; reaching this point in a hosted test
	// means kmain's bring-up sequence is being exercised directly rather
	// than run to completion.
	kernel.Panic(errKmainReturned)
}

// haltFn is overridden per architecture by the entry_*.go files with the
// real hlt/wfi primitive; left as a no-op so kmain's bring-up sequence
// can be driven from a host test without looping forever.
var haltFn = func() {}

// reservedRegions marks the kernel image's own physical footprint so the
// PMM never hands its frames back out.
func reservedRegions(info *bootinfo.BootInfo) []pmm.Region {
	length := mem.Size(0)
	if info.KernelEnd > info.KernelStart {
		length = mem.Size(info.KernelEnd - info.KernelStart)
	}
	return []pmm.Region{{Base: info.KernelStart, Length: length}}
}

// availableRegions converts the boot-info adapter's usable memory map
// into the shape pmm.Allocator.Init expects.
func availableRegions(info *bootinfo.BootInfo) []pmm.Region {
	avail := info.Available()
	out := make([]pmm.Region, len(avail))
	for i, r := range avail {
		out[i] = pmm.Region{Base: r.Base, Length: r.Length}
	}
	return out
}
