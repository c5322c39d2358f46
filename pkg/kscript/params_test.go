// SPDX-License-Identifier: MPL-2.0

package kscript

import (
	"slices"
	"testing"
)

func TestGlobalParameters(t *testing.T) {
	t.Parallel()

	src := `// launch script
declare parameter x.
parameter apoapsis is 80000. // target

function helper {
  parameter y.
  return y.
}

if apoapsis > 0 {
  parameter notGlobal.
}
PARAMETER last.
`
	got := GlobalParameters(src)
	want := []string{"declare parameter x.", "parameter apoapsis is 80000.", "PARAMETER last."}
	if !slices.Equal(got, want) {
		t.Errorf("GlobalParameters() = %q, want %q", got, want)
	}
}

func TestGlobalParameters_OnlyTopLevel(t *testing.T) {
	t.Parallel()

	src := "declare parameter x.\nfunction f {\n  parameter y.\n}\n"
	got := GlobalParameters(src)
	if !slices.Equal(got, []string{"declare parameter x."}) {
		t.Errorf("GlobalParameters() = %q, want only the x declaration", got)
	}
}

func TestGlobalParameters_StrayClosingBraceClamps(t *testing.T) {
	t.Parallel()

	src := "}\n}\nparameter after.\n"
	got := GlobalParameters(src)
	if !slices.Equal(got, []string{"parameter after."}) {
		t.Errorf("GlobalParameters() = %q, want [parameter after.]", got)
	}
}

func TestGlobalParameters_IgnoresLookalikes(t *testing.T) {
	t.Parallel()

	src := "set parameters to 1.\n// parameter commented.\nprint \"parameter\".\n"
	if got := GlobalParameters(src); len(got) != 0 {
		t.Errorf("expected no declarations, got %q", got)
	}
}

func TestParameterNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		decl string
		want []string
	}{
		{"parameter x.", []string{"x"}},
		{"declare parameter target.", []string{"target"}},
		{"DECLARE PARAMETER a, b.", []string{"a", "b"}},
		{"parameter alt is 80000, incl is 0.5.", []string{"alt", "incl"}},
		{"parameter v is list(1, 2), w.", []string{"v", "w"}},
		{`parameter msg is "a, b".`, []string{"msg"}},
		{"parameter n. print n.", []string{"n"}},
		{"print 1.", nil},
	}

	for _, tt := range tests {
		if got := ParameterNames(tt.decl); !slices.Equal(got, tt.want) {
			t.Errorf("ParameterNames(%q) = %q, want %q", tt.decl, got, tt.want)
		}
	}
}
