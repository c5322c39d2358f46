// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue/errors"
)

// FormatError rewrites a CUE error as "<file>: <path>: <message>", one line
// per distinct problem. Paths use JSON notation, so a bad second offline
// script in a manifest reads
//
//	manifest.yaml: packages.probe.offline_scripts[1]: conflicting values 3 and string
//
// Errors that do not come from CUE are only prefixed with the file name.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	list := errors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	// Disjunctions in the schema report the same failure once per branch.
	var problems []string
	for _, e := range list {
		if p := describe(e); !slices.Contains(problems, p) {
			problems = append(problems, p)
		}
	}

	if len(problems) == 1 {
		return fmt.Errorf("%s: %s", filePath, problems[0])
	}
	return fmt.Errorf("%s: %d problems:\n  %s", filePath, len(problems), strings.Join(problems, "\n  "))
}

func describe(e errors.Error) string {
	path := formatPath(errors.Path(e))
	msg := e.Error()
	if path == "" {
		return msg
	}
	// The message often starts with the dotted path already.
	if rest, ok := strings.CutPrefix(msg, path); ok {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return path + ": " + msg
}

// formatPath joins CUE path selectors in JSON notation: list indexes after the
// first element become [n], everything else is dot separated.
func formatPath(path []string) string {
	var b strings.Builder
	for i, sel := range path {
		switch {
		case i > 0 && isIndex(sel):
			fmt.Fprintf(&b, "[%s]", sel)
		case i > 0:
			b.WriteString("." + sel)
		default:
			b.WriteString(sel)
		}
	}
	return b.String()
}

func isIndex(sel string) bool {
	return sel != "" && !strings.ContainsFunc(sel, func(r rune) bool { return r < '0' || r > '9' })
}

// CheckFileSize rejects manifests and config files larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, size, maxSize)
	}
	return nil
}
