// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"strings"

	"github.com/kospack/kospack/pkg/kscript"
)

// Wrapper is a generated online entry point: it redeclares the target
// script's global parameters and forwards them to it with runPath.
type Wrapper struct {
	// Path is the original archive path of the wrapped script.
	Path string
	// Name is the deployed base name, without extension.
	Name string
	// Parameters are the global parameter declaration lines, verbatim.
	Parameters []string
	// Arguments are the forwarded parameter names in declaration order.
	Arguments []string
	// Text is the rendered wrapper script.
	Text string
}

// NewWrapper builds the wrapper for unit.
func NewWrapper(unit kscript.SourceUnit) Wrapper {
	params := kscript.GlobalParameters(unit.Text)

	var args []string
	for _, decl := range params {
		args = append(args, kscript.ParameterNames(decl)...)
	}

	var b strings.Builder
	for _, decl := range params {
		b.WriteString(decl)
		b.WriteString("\n")
	}
	b.WriteString(`runPath("`)
	b.WriteString(unit.Path)
	b.WriteString(`"`)
	for _, arg := range args {
		b.WriteString(", ")
		b.WriteString(arg)
	}
	b.WriteString(").\n")

	return Wrapper{
		Path:       unit.Path,
		Name:       kscript.ScriptName(unit.Path),
		Parameters: params,
		Arguments:  args,
		Text:       b.String(),
	}
}
