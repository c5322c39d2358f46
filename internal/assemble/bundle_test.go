// SPDX-License-Identifier: MPL-2.0

package assemble

import (
	"testing"

	"github.com/kospack/kospack/pkg/kscript"
)

func TestLibraryText(t *testing.T) {
	t.Parallel()

	set := kscript.NewFunctionSet()
	set.Put(kscript.FunctionDefinition{Name: "a", Code: "function a { return b(). }"})
	set.Put(kscript.FunctionDefinition{Name: "b", Code: "function b { return 1. }"})

	got := LibraryText("pkg_lib", set)
	want := "// pkg_lib - Generated library script\n@lazyGlobal off.\n\n" +
		"function b { return 1. }\n\n" +
		"function a { return b(). }\n\n"
	if got != want {
		t.Errorf("LibraryText():\n got: %q\nwant: %q", got, want)
	}
}

func TestLibraryText_Empty(t *testing.T) {
	t.Parallel()

	want := LibraryHeader("e_lib")
	if got := LibraryText("e_lib", kscript.NewFunctionSet()); got != want {
		t.Errorf("LibraryText(empty) = %q, want %q", got, want)
	}
	if got := LibraryText("e_lib", nil); got != want {
		t.Errorf("LibraryText(nil) = %q, want %q", got, want)
	}
}

func TestNewWrapper_NoParameters(t *testing.T) {
	t.Parallel()

	w := NewWrapper(kscript.NewSourceUnit("0:/src/status.ks", "print ship:name.\n"))
	if want := "runPath(\"0:/src/status.ks\").\n"; w.Text != want {
		t.Errorf("wrapper text = %q, want %q", w.Text, want)
	}
	if len(w.Parameters) != 0 || len(w.Arguments) != 0 {
		t.Errorf("expected no parameters, got %v / %v", w.Parameters, w.Arguments)
	}
}
