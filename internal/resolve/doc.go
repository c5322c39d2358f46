// SPDX-License-Identifier: MPL-2.0

// Package resolve computes the library functions a script actually uses.
//
// A Collector loads every library a script links, indexes the functions those
// libraries define, and walks the lexical call graph breadth-first from the
// script's own call sites. Only reachable definitions are returned, so
// packages ship a tree-shaken library instead of whole library files.
//
// Missing or unreadable libraries never abort resolution. They are reported
// as Diagnostic values and the walk continues with a partial index.
package resolve
