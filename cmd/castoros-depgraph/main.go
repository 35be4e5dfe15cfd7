// Command castoros-depgraph is a build-time invariant checker, adapted
// from the Oichkatzelesfrettschen-biscuit pack's misc/depgraph tool.
// Where biscuit's depgraph shells out to `go mod graph` and prints a
// Graphviz dump for a human to eyeball, this one loads the module's own
// packages with golang.org/x/tools/go/packages and checks a concrete
// invariant: the layered composition order described for this kernel's
// HAL and memory-management stack never runs backwards. A later layer
// (the VMM) is allowed to import an earlier one (the PMM); the reverse
// is a regression that should fail the build, not wait for a code
// reviewer to notice an import cycle.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

const modulePath = "github.com/castorworks/CastorOS-sub006"

// layer assigns each internal package a rank in the intended
// composition order of the HAL and memory-management stack, lowest
// first. internal/sync sits at rank 0 and is available to every layer
// above it for locking. Packages not
// listed here (cmd/*, internal/kfmt, internal/errno, internal/kernel)
// are treated as layer 0 leaves or pure consumers and never checked as
// an import source.
var layer = map[string]int{
	"internal/mem":          0,
	"internal/mem/pte":      0, // A
	"internal/sync":         0, // K
	"internal/hal":          1, // B, F's interfaces
	"internal/hal/bootinfo": 1, // C
	"internal/mem/pmm":      2, // D
	"internal/mem/vmm":      3, // E, G
	"internal/hal/amd64":    4, // F's amd64 backend
	"internal/hal/i386":     4, // F's i386 backend
	"internal/hal/arm64":    4, // F's arm64 backend
	"internal/hal/diag":     4,
	"internal/irq":          5, // H
	"internal/task":         6, // I
	"internal/syscall":      7, // J
	"internal/stat":         8,
}

func trimModule(importPath string) (string, bool) {
	if !strings.HasPrefix(importPath, modulePath) {
		return "", false
	}
	rel := strings.TrimPrefix(importPath, modulePath)
	rel = strings.TrimPrefix(rel, "/")
	return rel, rel != ""
}

// violation describes one backwards-layer import.
type violation struct {
	from, to         string
	fromRank, toRank int
}

func (v violation) String() string {
	return fmt.Sprintf("%s (layer %d) imports %s (layer %d): later layer must not be imported by an earlier one",
		v.from, v.fromRank, v.to, v.toRank)
}

// check loads every internal/... package and returns every edge that
// violates the layer order. An edge from a package with no assigned
// layer is ignored — only the core HAL/memory stack is under this
// invariant; everything else is treated as a consumer.
func check(dir string) ([]violation, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/internal/...")
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var violations []violation
	for _, pkg := range pkgs {
		fromRel, ok := trimModule(pkg.PkgPath)
		if !ok {
			continue
		}
		fromRank, ok := layer[fromRel]
		if !ok {
			continue
		}
		for importPath := range pkg.Imports {
			toRel, ok := trimModule(importPath)
			if !ok {
				continue
			}
			toRank, ok := layer[toRel]
			if !ok {
				continue
			}
			if toRank > fromRank {
				violations = append(violations, violation{fromRel, toRel, fromRank, toRank})
			}
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		return violations[i].from < violations[j].from
	})
	return violations, nil
}

func main() {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	violations, err := check(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("depgraph: composition order holds")
		return
	}

	for _, v := range violations {
		fmt.Fprintln(os.Stderr, v)
	}
	os.Exit(1)
}
