// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kospack/kospack/internal/resolve"
	"github.com/kospack/kospack/pkg/kscript"
)

// ErrEntryScript is wrapped when a configured entry script cannot be loaded.
var ErrEntryScript = errors.New("entry script unavailable")

type (
	// Option configures an Assembler.
	Option func(*Assembler)

	// Assembler builds package bundles from source units served by a loader.
	Assembler struct {
		loader        resolve.Loader
		layout        kscript.Layout
		collectorOpts []resolve.Option
	}

	// Input names the entry points of one package.
	Input struct {
		// LibName is the name of the consolidated library (e.g. "ship_lib").
		LibName string
		// Offline are the entry scripts to resolve, in configured order.
		Offline []string
		// Online are the entry scripts that get wrappers.
		Online []string
	}

	// Script is one processed script.
	Script struct {
		// Path is the archive path the script was loaded from.
		Path string
		// Name is the deployed base name, without extension.
		Name string
		// Text is the rewritten source.
		Text string
		// LinkPaths and RunPaths are the distinct original directive targets.
		LinkPaths []string
		RunPaths  []string
		// Used lists the library functions this script needs, in collection order.
		Used []string
		// Diagnostics are the findings produced while resolving this script.
		Diagnostics []resolve.Diagnostic
	}

	// Edge is one runpath reference between two scripts.
	Edge struct {
		From string
		To   string
	}

	// EntryError is returned when a configured entry script cannot be loaded.
	// It wraps ErrEntryScript for errors.Is() compatibility.
	EntryError struct {
		// Kind is "offline" or "online".
		Kind string
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *EntryError) Error() string {
	return fmt.Sprintf("%s script %q: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns both ErrEntryScript and the load error.
func (e *EntryError) Unwrap() []error { return []error{ErrEntryScript, e.Err} }

// WithLayout overrides the deployed package layout used for rewriting.
func WithLayout(layout kscript.Layout) Option {
	return func(a *Assembler) {
		a.layout = layout
	}
}

// WithCollectorOptions passes options to the closure collector of every script.
func WithCollectorOptions(opts ...resolve.Option) Option {
	return func(a *Assembler) {
		a.collectorOpts = append(a.collectorOpts, opts...)
	}
}

// New creates an Assembler reading scripts and libraries through loader.
func New(loader resolve.Loader, opts ...Option) *Assembler {
	a := &Assembler{
		loader: loader,
		layout: kscript.DefaultLayout(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Layout returns the deployed package layout the assembler rewrites against.
func (a *Assembler) Layout() kscript.Layout {
	return a.layout
}

// Assemble processes every offline entry script and every script reachable
// from them through runpath, then builds the package library and the online
// wrappers.
//
// A configured entry script that cannot be loaded is an error. A discovered
// runpath target that cannot be loaded produces a warning diagnostic and is
// skipped. A runpath back into an already processed script does not process it
// again.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*Bundle, error) {
	bundle := newBundle(in.LibName)
	collector := resolve.NewCollector(a.loader, a.collectorOpts...)

	entries := make(map[string]bool, len(in.Offline))
	queued := make(map[string]bool)
	var pending []string
	enqueue := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" || queued[path] {
			return
		}
		queued[path] = true
		pending = append(pending, path)
	}
	for _, path := range in.Offline {
		entries[strings.TrimSpace(path)] = true
		enqueue(path)
	}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := pending[0]
		pending = pending[1:]

		unit, err := a.loader.Load(path)
		if err != nil {
			if entries[path] {
				return nil, &EntryError{Kind: "offline", Path: path, Err: err}
			}
			bundle.Diagnostics = append(bundle.Diagnostics, scriptDiagnostic(path, err))
			continue
		}

		script := a.processScript(collector, bundle, unit)
		for _, target := range script.RunPaths {
			bundle.Edges = append(bundle.Edges, Edge{From: path, To: target})
			enqueue(target)
		}
	}

	bundle.LibraryText = LibraryText(in.LibName, bundle.Library)

	for _, path := range in.Online {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		unit, err := a.loader.Load(strings.TrimSpace(path))
		if err != nil {
			return nil, &EntryError{Kind: "online", Path: path, Err: err}
		}
		bundle.Wrappers = append(bundle.Wrappers, NewWrapper(unit))
	}

	return bundle, nil
}

// processScript rewrites one unit, collects the functions it uses and merges
// them into the bundle's accumulator.
func (a *Assembler) processScript(collector *resolve.Collector, bundle *Bundle, unit kscript.SourceUnit) Script {
	rewrite := kscript.RewriteDirectives(unit.Text, a.layout, bundle.LibName)
	collected := collector.Collect(rewrite.Text, rewrite.LinkPaths)

	script := Script{
		Path:        unit.Path,
		Name:        kscript.ScriptName(unit.Path),
		Text:        rewrite.Text,
		LinkPaths:   rewrite.LinkPaths,
		RunPaths:    rewrite.RunPaths,
		Used:        collected.Functions.Names(),
		Diagnostics: collected.Diagnostics,
	}

	bundle.Library.Merge(collected.Functions)
	bundle.Scripts = append(bundle.Scripts, script)
	bundle.Diagnostics = append(bundle.Diagnostics, collected.Diagnostics...)
	return script
}

func scriptDiagnostic(path string, err error) resolve.Diagnostic {
	if errors.Is(err, kscript.ErrUnitNotFound) {
		return resolve.Diagnostic{
			Severity: resolve.SeverityWarning,
			Code:     resolve.CodeScriptNotFound,
			Message:  "runpath target not found",
			Path:     path,
			Cause:    err,
		}
	}
	return resolve.Diagnostic{
		Severity: resolve.SeverityWarning,
		Code:     resolve.CodeScriptUnreadable,
		Message:  fmt.Sprintf("runpath target could not be read: %v", err),
		Path:     path,
		Cause:    err,
	}
}
