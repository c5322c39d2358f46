// SPDX-License-Identifier: MPL-2.0

package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kospack/kospack/internal/manifest"
)

const (
	lexiconType     = "kOS.Safe.Encapsulation.Lexicon"
	stringValueType = "kOS.Safe.Encapsulation.StringValue"
)

type (
	kosValue struct {
		Value string `json:"value"`
		Type  string `json:"$type"`
	}

	kosLexicon struct {
		Entries []kosValue `json:"entries"`
		Type    string     `json:"$type"`
	}
)

// StateJSON renders the persistent state file of pkg: a serialized kOS
// Lexicon mapping "package" and "version" to the package's values. Entries
// alternate key, value.
func StateJSON(pkg *manifest.Package) ([]byte, error) {
	lex := kosLexicon{Type: lexiconType}
	for _, s := range []string{"package", pkg.Name, "version", pkg.Version} {
		lex.Entries = append(lex.Entries, kosValue{Value: s, Type: stringValueType})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(lex); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// BootFileText renders the installer boot file of pkg.
func BootFileText(pkg *manifest.Package, installer string) string {
	return "// Auto-generated initial boot script for " + pkg.Name + "\n" +
		`print "Booting installer for ` + pkg.Name + ` (v` + pkg.Version + `)...".` + "\n" +
		`runpath("` + installer + `", "` + pkg.Name + `", ` + strconv.FormatBool(pkg.Compile) + ", true).\n"
}
