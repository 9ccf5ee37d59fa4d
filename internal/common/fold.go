// Package common holds small helpers shared across packages.
package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining diacritical marks, so that
// "Pérez" and "perez" compare equal. Catalog search is defined over
// folded strings.
func Fold(s string) string {
	// Transformers carry state; build a fresh chain per call so Fold is
	// safe for concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// ContainsFold reports whether needle occurs in haystack under folding.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
