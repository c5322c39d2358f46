// SPDX-License-Identifier: MPL-2.0

package kscript

import (
	"strings"
	"unicode"
)

// StripComments removes block (/* */) and line (//) comments from kerboscript
// source and right-trims every line.
//
// Block comments are removed first, across the whole text, until none remain;
// each line is then truncated at its first line comment marker. Markers inside
// double-quoted string literals are left alone, and a string never extends past
// the end of its line. An unterminated block comment opener is kept as plain
// text. The result is stable: StripComments(StripComments(s)) == StripComments(s).
func StripComments(text string) string {
	for {
		stripped := stripBlockComments(text)
		if stripped == text {
			break
		}
		text = stripped
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line[:lineCommentStart(line)], unicode.IsSpace)
	}
	return strings.Join(lines, "\n")
}

// stripBlockComments makes one left-to-right pass removing /* */ comments.
// Removal can join a '/' and a '*' into a new opener, so callers repeat it.
func stripBlockComments(text string) string {
	if !strings.Contains(text, "/*") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			b.WriteByte(c)
			if c == '"' || c == '\n' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			i += 2 + end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// lineCommentStart returns the index of the first // outside a string, or
// len(line) when there is none.
func lineCommentStart(line string) int {
	inString := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inString = !inString
		case inString:
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return i
		}
	}
	return len(line)
}

// braceDelta returns the number of opening minus closing braces on a line,
// ignoring braces inside double-quoted strings.
func braceDelta(line string) int {
	delta := 0
	inString := false
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			delta++
		case c == '}':
			delta--
		}
	}
	return delta
}
