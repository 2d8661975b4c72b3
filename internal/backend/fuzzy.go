// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Ratio is the normalized indel similarity of a and b on a 0..100 scale:
// 200 * LCS / (len(a) + len(b)), measured in runes. Two empty strings
// score 100.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

// bestMatch returns the index of the candidate with the highest ratio to
// query and its score. Ties keep the earliest candidate. It returns -1 for
// an empty candidate list.
func bestMatch(query string, candidates []string) (int, float64) {
	best, score := -1, -1.0
	for i, c := range candidates {
		if r := Ratio(query, c); r > score {
			best, score = i, r
		}
	}
	return best, score
}
