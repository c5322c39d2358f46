// SPDX-License-Identifier: MPL-2.0

package kscript

import (
	"regexp"
	"strings"
)

var (
	// parameterDecl matches a parameter declaration statement.
	parameterDecl = regexp.MustCompile(`(?i)^\s*(declare\s+parameter|parameter)\b`)
	// parameterKeyword matches the declaration keyword and the whitespace after it.
	parameterKeyword = regexp.MustCompile(`(?i)^\s*(?:declare\s+)?parameter\s+`)
	// leadingIdent matches the identifier a declaration item starts with.
	leadingIdent = regexp.MustCompile(`^\s*([A-Za-z_]\w*)`)
)

// GlobalParameters returns the parameter declaration lines that appear outside
// any brace block, trimmed, in source order. Comments are stripped first.
//
// The running brace depth never drops below zero, so stray closing braces do
// not hide later top-level declarations.
func GlobalParameters(text string) []string {
	var declarations []string
	depth := 0
	for line := range strings.SplitSeq(StripComments(text), "\n") {
		trimmed := strings.TrimSpace(line)
		depth = max(0, depth+braceDelta(trimmed))
		if depth == 0 && parameterDecl.MatchString(trimmed) {
			declarations = append(declarations, trimmed)
		}
	}
	return declarations
}

// ParameterNames returns every name declared by one parameter declaration
// line, in order. Default values ("is"/"to" clauses) are skipped.
//
//	ParameterNames("parameter a, b is 5.") == []string{"a", "b"}
func ParameterNames(declaration string) []string {
	loc := parameterKeyword.FindStringIndex(declaration)
	if loc == nil {
		return nil
	}

	var names []string
	for _, item := range splitDeclarationItems(declaration[loc[1]:]) {
		if m := leadingIdent.FindStringSubmatch(item); m != nil {
			names = append(names, m[1])
		}
	}
	return names
}

// splitDeclarationItems splits the body of a declaration on top-level commas
// and stops at the statement terminator. A period only terminates when it is
// followed by whitespace or the end of the line, so decimal literals survive.
func splitDeclarationItems(body string) []string {
	var (
		items    []string
		depth    int
		inString bool
		start    int
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '"':
			inString = !inString
		case inString:
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth = max(0, depth-1)
		case c == ',' && depth == 0:
			items = append(items, body[start:i])
			start = i + 1
		case c == '.' && depth == 0 && (i+1 == len(body) || body[i+1] == ' ' || body[i+1] == '\t'):
			return append(items, body[start:i])
		}
	}
	return append(items, body[start:])
}
