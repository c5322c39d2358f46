// SPDX-License-Identifier: MPL-2.0

// Package kscript provides the lexical analysis used to bundle kerboscript
// sources: comment stripping, brace-balanced function extraction, call-site
// scanning, directive discovery and rewriting, and global parameter extraction.
//
// Kerboscript is case-insensitive, so every identifier that is stored or looked
// up goes through CanonicalName first. None of the scanners build a syntax tree;
// they rely on lexical cues only (keywords, quotes, braces and parentheses).
package kscript
