// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm normalizes recognized text and search queries.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Clean applies NFKC normalization, drops control characters, collapses
// internal whitespace, and trims. Recognizers often emit full-width forms
// and stray line breaks inside a single label.
func Clean(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the case-folded NFKC form of s for case-insensitive
// comparison. Whitespace is preserved.
func Fold(s string) string {
	// A Caser is stateful; one per call keeps Fold safe for concurrent use.
	return cases.Fold().String(norm.NFKC.String(s))
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
