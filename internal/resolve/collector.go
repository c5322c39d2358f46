// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"

	"github.com/kospack/kospack/pkg/kscript"
)

type (
	// Loader resolves an archive path to the source unit stored there.
	// Implementations wrap kscript.ErrUnitNotFound when the path does not exist.
	Loader interface {
		Load(path string) (kscript.SourceUnit, error)
	}

	// LoaderFunc adapts a plain function to the Loader interface.
	LoaderFunc func(path string) (kscript.SourceUnit, error)

	// CallScanner returns the canonical names of the functions text may call.
	// It is the edge discovery step of the closure walk.
	CallScanner func(text string) []string

	// Option configures a Collector.
	Option func(*Collector)

	// Collector computes used-function closures against linked libraries.
	Collector struct {
		loader    Loader
		scanCalls CallScanner
	}

	// Result is the outcome of one Collect call.
	Result struct {
		// Functions holds the collected definitions in breadth-first order.
		Functions *kscript.FunctionSet
		// Libraries is the merged index of every successfully loaded library.
		Libraries *kscript.FunctionSet
		// Loaded lists the library paths that were read, in link order.
		Loaded []string
		// Diagnostics lists libraries that were skipped.
		Diagnostics []Diagnostic
	}
)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (kscript.SourceUnit, error) { return f(path) }

// WithCallScanner replaces the lexical call-site heuristic used to discover
// edges of the call graph.
func WithCallScanner(scan CallScanner) Option {
	return func(c *Collector) {
		if scan != nil {
			c.scanCalls = scan
		}
	}
}

// NewCollector creates a Collector that reads libraries through loader.
func NewCollector(loader Loader, opts ...Option) *Collector {
	c := &Collector{
		loader:    loader,
		scanCalls: kscript.CallSites,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns the minimal set of library functions script needs.
//
// Every path in linkPaths is loaded and indexed in order; a later library
// overwrites same-named functions of an earlier one. The walk is seeded with
// the script's direct calls that resolve to the index, excluding names the
// script defines itself, and then follows calls found in each collected
// definition. A name is marked seen before it is enqueued, so recursive
// functions are collected exactly once.
func (c *Collector) Collect(script string, linkPaths []string) Result {
	result := Result{
		Functions: kscript.NewFunctionSet(),
		Libraries: kscript.NewFunctionSet(),
	}

	for _, path := range linkPaths {
		unit, err := c.loader.Load(path)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, libraryDiagnostic(path, err))
			continue
		}
		result.Libraries.Merge(kscript.ExtractFunctions(unit.Text))
		result.Loaded = append(result.Loaded, path)
	}
	if result.Libraries.Len() == 0 {
		return result
	}

	local := kscript.ExtractFunctions(script)
	seen := make(map[string]bool)
	var queue []string

	for _, name := range c.scanCalls(kscript.StripComments(script)) {
		name = kscript.CanonicalName(name)
		if seen[name] || local.Has(name) || !result.Libraries.Has(name) {
			continue
		}
		seen[name] = true
		queue = append(queue, name)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		def, _ := result.Libraries.Get(name)
		result.Functions.Put(def)

		for _, callee := range c.scanCalls(def.Code) {
			callee = kscript.CanonicalName(callee)
			if seen[callee] || !result.Libraries.Has(callee) {
				continue
			}
			seen[callee] = true
			queue = append(queue, callee)
		}
	}

	return result
}

func libraryDiagnostic(path string, err error) Diagnostic {
	if errors.Is(err, kscript.ErrUnitNotFound) {
		return Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeLibraryNotFound,
			Message:  "library path not found",
			Path:     path,
			Cause:    err,
		}
	}
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeLibraryUnreadable,
		Message:  fmt.Sprintf("library could not be read: %v", err),
		Path:     path,
		Cause:    err,
	}
}
