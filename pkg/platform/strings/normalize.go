// Package strings provides string normalization used on free-text input.
package strings

import (
	"strings"
	"unicode"
)

// CollapseSpace trims s and replaces every run of whitespace with a single
// space.
//
//	CollapseSpace("  Acme \t Auto  ") // "Acme Auto"
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// NormalizeList collapses whitespace in each element, drops blanks and removes
// duplicates, keeping the first occurrence. With fold set, elements are
// lowercased before comparison and in the result.
//
//	NormalizeList([]string{" Brakes", "brakes", "", "EV  Repair"}, true)
//	// []string{"brakes", "ev repair"}
func NormalizeList(values []string, fold bool) []string {
	if values == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := CollapseSpace(v)
		if fold {
			n = strings.ToLower(n)
		}
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
