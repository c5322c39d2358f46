// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
)

const (
	// SeverityInfo marks purely informational diagnostics.
	SeverityInfo Severity = "info"
	// SeverityWarning indicates a recoverable resolution problem.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a problem that prevented part of a package from building.
	SeverityError Severity = "error"

	// CodeLibraryNotFound is emitted when a linked library path does not exist.
	CodeLibraryNotFound DiagnosticCode = "library_not_found"
	// CodeLibraryUnreadable is emitted when a linked library cannot be read or decoded.
	CodeLibraryUnreadable DiagnosticCode = "library_unreadable"
	// CodeScriptNotFound is emitted when a discovered runpath target does not exist.
	CodeScriptNotFound DiagnosticCode = "script_not_found"
	// CodeScriptUnreadable is emitted when a discovered runpath target cannot be read.
	CodeScriptUnreadable DiagnosticCode = "script_unreadable"
	// CodeRunpathCycle is emitted when scripts of a package run each other in a cycle.
	CodeRunpathCycle DiagnosticCode = "runpath_cycle"
)

var (
	// ErrInvalidSeverity is returned when a Severity value is not recognized.
	ErrInvalidSeverity = errors.New("invalid diagnostic severity")
	// ErrInvalidDiagnosticCode is returned when a DiagnosticCode value is not recognized.
	ErrInvalidDiagnosticCode = errors.New("invalid diagnostic code")
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// DiagnosticCode is a machine-readable diagnostic identifier.
	DiagnosticCode string

	// InvalidSeverityError is returned when a Severity value is not recognized.
	// It wraps ErrInvalidSeverity for errors.Is() compatibility.
	InvalidSeverityError struct {
		Value Severity
	}

	// InvalidDiagnosticCodeError is returned when a DiagnosticCode value is not recognized.
	// It wraps ErrInvalidDiagnosticCode for errors.Is() compatibility.
	InvalidDiagnosticCodeError struct {
		Value DiagnosticCode
	}

	// Diagnostic is a structured, non-fatal resolution finding that is
	// returned to callers (rather than printed) so the CLI decides how to
	// render it.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g., "library_not_found").
		Code DiagnosticCode
		// Message is the human-readable description.
		Message string
		// Path is the archive path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid diagnostic severity %q (valid: info, warning, error)", e.Value)
}

// Unwrap returns ErrInvalidSeverity for errors.Is() compatibility.
func (e *InvalidSeverityError) Unwrap() error { return ErrInvalidSeverity }

// Error implements the error interface.
func (e *InvalidDiagnosticCodeError) Error() string {
	return fmt.Sprintf("invalid diagnostic code %q", e.Value)
}

// Unwrap returns ErrInvalidDiagnosticCode for errors.Is() compatibility.
func (e *InvalidDiagnosticCodeError) Unwrap() error { return ErrInvalidDiagnosticCode }

// IsValid returns whether the Severity is one of the defined levels,
// and a list of validation errors if it is not.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{&InvalidSeverityError{Value: s}}
	}
}

// IsValid returns whether the DiagnosticCode is one of the defined codes,
// and a list of validation errors if it is not.
func (c DiagnosticCode) IsValid() (bool, []error) {
	switch c {
	case CodeLibraryNotFound, CodeLibraryUnreadable, CodeScriptNotFound, CodeScriptUnreadable, CodeRunpathCycle:
		return true, nil
	default:
		return false, []error{&InvalidDiagnosticCodeError{Value: c}}
	}
}

// String renders the diagnostic as a single log-friendly line.
func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Path)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
