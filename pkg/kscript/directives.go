// SPDX-License-Identifier: MPL-2.0

package kscript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DirectiveLink attaches a library's functions to the caller (runoncepath).
	DirectiveLink DirectiveKind = "link"
	// DirectiveRun executes another script (runpath).
	DirectiveRun DirectiveKind = "run"

	// DefaultLibRoot is where the consolidated library lives in a deployed package.
	DefaultLibRoot = "1:/lib"
	// DefaultScriptRoot is where rewritten scripts live in a deployed package.
	DefaultScriptRoot = "1:"
)

// ErrInvalidDirectiveKind is returned when a DirectiveKind value is not recognized.
var ErrInvalidDirectiveKind = errors.New("invalid directive kind")

// Both patterns have the shape keyword("path"args). Go regexps have no
// backreferences, so each quote style gets its own alternative.
var directivePatterns = map[DirectiveKind]*regexp.Regexp{
	DirectiveLink: regexp.MustCompile(`(?i)\b(runoncepath)\s*\((?:"([^"\n]*)"|'([^'\n]*)')([^)]*)\)`),
	DirectiveRun:  regexp.MustCompile(`(?i)\b(runpath)\s*\((?:"([^"\n]*)"|'([^'\n]*)')([^)]*)\)`),
}

type (
	// DirectiveKind tags a cross-file call directive.
	DirectiveKind string

	// InvalidDirectiveKindError is returned when a DirectiveKind value is not recognized.
	// It wraps ErrInvalidDirectiveKind for errors.Is() compatibility.
	InvalidDirectiveKindError struct {
		Value DirectiveKind
	}

	// Directive is one discovered cross-file call.
	Directive struct {
		Kind DirectiveKind
		// Keyword is the call keyword exactly as written (e.g. "runOncePath").
		Keyword string
		// Target is the path argument, case preserved and trimmed.
		Target string
		// Args is everything between the closing quote and the closing
		// parenthesis, verbatim (e.g. ", 1, true").
		Args string
		// Start and End are the byte offsets of the whole call in the text.
		Start, End int
	}

	// Layout describes where a deployed package keeps its files, in kOS path
	// notation.
	Layout struct {
		// LibRoot is the directory holding the consolidated library.
		LibRoot string
		// ScriptRoot is the directory scripts are copied to.
		ScriptRoot string
	}

	// Rewrite is the result of RewriteDirectives.
	Rewrite struct {
		// Text is the source with every directive pointed at its package location.
		Text string
		// LinkPaths are the distinct original library paths, in order of appearance.
		LinkPaths []string
		// RunPaths are the distinct original script paths, in order of appearance.
		RunPaths []string
	}
)

// Error implements the error interface.
func (e *InvalidDirectiveKindError) Error() string {
	return fmt.Sprintf("invalid directive kind %q (valid: link, run)", e.Value)
}

// Unwrap returns ErrInvalidDirectiveKind for errors.Is() compatibility.
func (e *InvalidDirectiveKindError) Unwrap() error { return ErrInvalidDirectiveKind }

// IsValid returns whether the DirectiveKind is a known kind,
// and a list of validation errors if it is not.
func (k DirectiveKind) IsValid() (bool, []error) {
	switch k {
	case DirectiveLink, DirectiveRun:
		return true, nil
	default:
		return false, []error{&InvalidDirectiveKindError{Value: k}}
	}
}

// DefaultLayout returns the standard deployed package layout.
func DefaultLayout() Layout {
	return Layout{LibRoot: DefaultLibRoot, ScriptRoot: DefaultScriptRoot}
}

// LibraryTarget returns the kOS path of the consolidated library named libName.
func (l Layout) LibraryTarget(libName string) string {
	return joinKOSPath(l.LibRoot, libName)
}

// ScriptTarget returns the kOS path a script originally at path is deployed to.
func (l Layout) ScriptTarget(path string) string {
	return joinKOSPath(l.ScriptRoot, ScriptName(path))
}

// FindDirectives returns every directive of the given kind in text, in order.
// Directives whose path is empty after trimming are skipped.
func FindDirectives(text string, kind DirectiveKind) []Directive {
	pattern, ok := directivePatterns[kind]
	if !ok {
		return nil
	}

	var directives []Directive
	for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
		d := directiveFromMatch(text, kind, m)
		if d.Target == "" {
			continue
		}
		directives = append(directives, d)
	}
	return directives
}

// RewriteDirectives points every runoncepath call at the package library
// named libName and every runpath call at the script's deployed location.
// Original paths are recorded before any text is replaced. Keywords and
// trailing arguments are kept as written.
func RewriteDirectives(text string, layout Layout, libName string) Rewrite {
	result := Rewrite{
		LinkPaths: distinctTargets(FindDirectives(text, DirectiveLink)),
		RunPaths:  distinctTargets(FindDirectives(text, DirectiveRun)),
	}

	libTarget := layout.LibraryTarget(libName)
	rewritten := replaceDirectives(text, DirectiveLink, func(Directive) string {
		return libTarget
	})
	rewritten = replaceDirectives(rewritten, DirectiveRun, func(d Directive) string {
		return layout.ScriptTarget(d.Target)
	})

	result.Text = rewritten
	return result
}

// replaceDirectives substitutes every directive of kind with a call to the
// target returned by fn.
func replaceDirectives(text string, kind DirectiveKind, fn func(Directive) string) string {
	pattern := directivePatterns[kind]
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		d := directiveFromMatch(text, kind, m)
		b.WriteString(text[last:d.Start])
		b.WriteString(d.Keyword)
		b.WriteString(`("`)
		b.WriteString(fn(d))
		b.WriteString(`"`)
		b.WriteString(d.Args)
		b.WriteString(")")
		last = d.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// directiveFromMatch builds a Directive from a submatch index slice of one of
// the directive patterns. Groups: 1 keyword, 2 double-quoted path,
// 3 single-quoted path, 4 trailing args.
func directiveFromMatch(text string, kind DirectiveKind, m []int) Directive {
	target := ""
	switch {
	case m[4] >= 0:
		target = text[m[4]:m[5]]
	case m[6] >= 0:
		target = text[m[6]:m[7]]
	}
	return Directive{
		Kind:    kind,
		Keyword: text[m[2]:m[3]],
		Target:  strings.TrimSpace(target),
		Args:    text[m[8]:m[9]],
		Start:   m[0],
		End:     m[1],
	}
}

func distinctTargets(directives []Directive) []string {
	seen := make(map[string]bool, len(directives))
	var paths []string
	for _, d := range directives {
		if seen[d.Target] {
			continue
		}
		seen[d.Target] = true
		paths = append(paths, d.Target)
	}
	return paths
}

func joinKOSPath(root, name string) string {
	return strings.TrimSuffix(root, "/") + "/" + name
}
