// SPDX-License-Identifier: MPL-2.0

package kscript

import "regexp"

// callSite matches an identifier immediately followed by an opening
// parenthesis. It has no notion of syntax, so suffix calls, keywords and
// other coincidences match too.
var callSite = regexp.MustCompile(`\b(\w+)\s*\(`)

// CallSites returns the canonical names of every potential function call in
// text, in order of first appearance and without duplicates.
func CallSites(text string) []string {
	matches := callSite.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := CanonicalName(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
