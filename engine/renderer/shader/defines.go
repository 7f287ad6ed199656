package shader

import (
	"slices"
	"strings"
)

// NormalizeDefines canonicalizes a space-separated define list: tokens are upper-cased, sorted,
// de-duplicated and joined with single spaces. Two define strings that only differ in order,
// spacing or case normalize to the same value and therefore to the same variation.
//
// Parameters:
//   - defines: the raw define list
//
// Returns:
//   - string: the normalized define list, empty if there are no tokens
func NormalizeDefines(defines string) string {
	tokens := strings.Fields(strings.ToUpper(defines))
	if len(tokens) == 0 {
		return ""
	}
	slices.Sort(tokens)
	return strings.Join(slices.Compact(tokens), " ")
}

// HasDefine reports whether the space-separated define list contains the given token.
// A token of the form NAME=VALUE matches NAME.
//
// Parameters:
//   - defines: the define list to search
//   - name: the define name to look for
//
// Returns:
//   - bool: true if the define is present
func HasDefine(defines, name string) bool {
	for _, token := range strings.Fields(defines) {
		if defineName(token) == name {
			return true
		}
	}
	return false
}

// defineName strips an optional =VALUE suffix from a define token.
func defineName(token string) string {
	name, _, _ := strings.Cut(token, "=")
	return name
}

// defineSet builds a lookup set of the define names in a space-separated list.
func defineSet(defines string) map[string]struct{} {
	tokens := strings.Fields(defines)
	set := make(map[string]struct{}, len(tokens)+1)
	for _, token := range tokens {
		set[defineName(token)] = struct{}{}
	}
	return set
}
