// SPDX-License-Identifier: MPL-2.0

package kscript

import (
	"errors"
	"strings"
)

// ErrUnitNotFound is wrapped by loaders when a path does not resolve to an
// existing source file.
var ErrUnitNotFound = errors.New("source unit not found")

// SourceUnit is an immutable snapshot of one script or library file.
type SourceUnit struct {
	// Path is the archive path the unit was loaded from (e.g. "0:/lib/math.ks").
	Path string
	// Text is the file content as read.
	Text string
}

// NewSourceUnit creates a SourceUnit.
func NewSourceUnit(path, text string) SourceUnit {
	return SourceUnit{Path: path, Text: text}
}

// CanonicalName folds an identifier to the single casing used for storage and
// lookup of kerboscript names.
func CanonicalName(name string) string {
	return strings.ToUpper(name)
}

// ScriptName returns the base name of a kOS path without its extension.
// Anything up to the last drive colon and the last path separator is dropped,
// then everything from the first period onward.
//
//	ScriptName("0:/src/core/node.ks") == "node"
//	ScriptName("launch.v2.ks")        == "launch"
func ScriptName(path string) string {
	name := strings.TrimSpace(path)
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}
