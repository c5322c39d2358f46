// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"testing"
)

func TestSeverity_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     bool
	}{
		{SeverityInfo, true},
		{SeverityWarning, true},
		{SeverityError, true},
		{"", false},
		{"WARNING", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.severity.IsValid()
			if isValid != tt.want {
				t.Errorf("Severity(%q).IsValid() = %v, want %v", tt.severity, isValid, tt.want)
			}
			if !tt.want && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidSeverity)) {
				t.Errorf("expected ErrInvalidSeverity, got %v", errs)
			}
		})
	}
}

func TestDiagnosticCode_IsValid(t *testing.T) {
	t.Parallel()

	for _, code := range []DiagnosticCode{CodeLibraryNotFound, CodeLibraryUnreadable, CodeScriptNotFound, CodeScriptUnreadable, CodeRunpathCycle} {
		if ok, errs := code.IsValid(); !ok || len(errs) > 0 {
			t.Errorf("DiagnosticCode(%q).IsValid() = %v, %v", code, ok, errs)
		}
	}

	ok, errs := DiagnosticCode("LIBRARY_NOT_FOUND").IsValid()
	if ok || len(errs) == 0 || !errors.Is(errs[0], ErrInvalidDiagnosticCode) {
		t.Errorf("expected invalid code error, got %v %v", ok, errs)
	}
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Code: CodeLibraryNotFound, Message: "library path not found", Path: "0:/lib/x.ks"}
	if got, want := d.String(), "library_not_found: library path not found (0:/lib/x.ks)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	d.Path = ""
	if got, want := d.String(), "library_not_found: library path not found"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	if HasErrors([]Diagnostic{{Severity: SeverityWarning}, {Severity: SeverityInfo}}) {
		t.Error("warnings alone should not count as errors")
	}
	if !HasErrors([]Diagnostic{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Error("expected HasErrors to report the error diagnostic")
	}
}
