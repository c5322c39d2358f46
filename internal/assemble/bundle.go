// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"strings"

	"github.com/kospack/kospack/internal/resolve"
	"github.com/kospack/kospack/pkg/kscript"
)

// Bundle is everything one package build produces, before it is written out.
type Bundle struct {
	// LibName is the consolidated library name.
	LibName string
	// Scripts are the processed scripts in processing order.
	Scripts []Script
	// Library accumulates every script's used functions. A later script
	// replaces the code of a name an earlier script already contributed,
	// keeping the earlier position.
	Library *kscript.FunctionSet
	// LibraryText is the rendered library file.
	LibraryText string
	// Wrappers are the online entry point wrappers in configured order.
	Wrappers []Wrapper
	// Edges lists every runpath reference seen while processing.
	Edges []Edge
	// Diagnostics aggregates the findings of every processed script plus
	// skipped runpath targets.
	Diagnostics []resolve.Diagnostic
}

func newBundle(libName string) *Bundle {
	return &Bundle{
		LibName: libName,
		Library: kscript.NewFunctionSet(),
	}
}

// LibraryHeader returns the first lines of a generated library file.
func LibraryHeader(libName string) string {
	return "// " + libName + " - Generated library script\n@lazyGlobal off.\n\n"
}

// LibraryText renders the consolidated library: the header followed by every
// definition in reverse insertion order, each followed by a blank line.
// Collection is breadth-first, so reversing emits callees before callers.
func LibraryText(libName string, functions *kscript.FunctionSet) string {
	var b strings.Builder
	b.WriteString(LibraryHeader(libName))
	if functions == nil {
		return b.String()
	}
	for _, def := range functions.Reversed() {
		b.WriteString(def.Code)
		b.WriteString("\n\n")
	}
	return b.String()
}
