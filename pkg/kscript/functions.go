// SPDX-License-Identifier: MPL-2.0

package kscript

import (
	"iter"
	"regexp"
	"strings"
)

// functionStart matches the first line of a function definition. The opening
// brace must be on the same line as the name.
var functionStart = regexp.MustCompile(`(?i)^\s*function\s+(\w+)\s*\{`)

type (
	// FunctionDefinition is one extracted function: its canonical name and the
	// full text from the function keyword through the matching closing brace.
	FunctionDefinition struct {
		Name string
		Code string
	}

	// FunctionSet is an insertion-ordered mapping from canonical function name
	// to definition. Putting a name that already exists replaces its definition
	// but keeps its original position.
	//
	// The zero value is not usable; create sets with NewFunctionSet.
	FunctionSet struct {
		order []string
		defs  map[string]FunctionDefinition
	}
)

// NewFunctionSet creates an empty FunctionSet.
func NewFunctionSet() *FunctionSet {
	return &FunctionSet{defs: make(map[string]FunctionDefinition)}
}

// Put stores def under its canonical name. Last write wins.
func (s *FunctionSet) Put(def FunctionDefinition) {
	def.Name = CanonicalName(def.Name)
	if _, exists := s.defs[def.Name]; !exists {
		s.order = append(s.order, def.Name)
	}
	s.defs[def.Name] = def
}

// Get looks up a definition by name, in any casing.
func (s *FunctionSet) Get(name string) (FunctionDefinition, bool) {
	def, ok := s.defs[CanonicalName(name)]
	return def, ok
}

// Has reports whether name is defined in the set.
func (s *FunctionSet) Has(name string) bool {
	_, ok := s.defs[CanonicalName(name)]
	return ok
}

// Len returns the number of definitions.
func (s *FunctionSet) Len() int {
	return len(s.order)
}

// Names returns the canonical names in insertion order.
func (s *FunctionSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All iterates over the definitions in insertion order.
func (s *FunctionSet) All() iter.Seq2[string, FunctionDefinition] {
	return func(yield func(string, FunctionDefinition) bool) {
		for _, name := range s.order {
			if !yield(name, s.defs[name]) {
				return
			}
		}
	}
}

// Reversed returns the definitions in reverse insertion order.
func (s *FunctionSet) Reversed() []FunctionDefinition {
	out := make([]FunctionDefinition, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.defs[s.order[i]])
	}
	return out
}

// Merge puts every definition of other into s, in other's order.
func (s *FunctionSet) Merge(other *FunctionSet) {
	if other == nil {
		return
	}
	for _, def := range other.All() {
		s.Put(def)
	}
}

// ExtractFunctions scans kerboscript source for function definitions using a
// brace counter. Comments are stripped first.
//
// A definition ends only when its brace counter returns to exactly zero, so
// a stray closing brace keeps it open. A definition whose braces never balance
// before the end of the input is dropped. When a name is defined twice the later definition wins.
func ExtractFunctions(text string) *FunctionSet {
	functions := NewFunctionSet()

	var (
		inFunction bool
		depth      int
		name       string
		lines      []string
	)

	finish := func() {
		functions.Put(FunctionDefinition{
			Name: name,
			Code: strings.TrimSpace(strings.Join(lines, "\n")),
		})
		inFunction = false
		lines = nil
		name = ""
	}

	for line := range strings.SplitSeq(StripComments(text), "\n") {
		if !inFunction {
			if strings.TrimSpace(line) == "" {
				continue
			}
			match := functionStart.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			inFunction = true
			name = match[1]
			lines = append(lines, line)
			depth = braceDelta(line)
			if depth == 0 {
				// Whole definition on one line.
				finish()
			}
			continue
		}

		lines = append(lines, line)
		depth += braceDelta(line)
		if depth == 0 {
			finish()
		}
	}

	return functions
}
