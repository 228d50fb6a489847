// Package fuzzy scores approximate string closeness for the fallback matcher.
//
// Ratio is the Levenshtein similarity 1 - d/max(|a|, |b|). On typical
// command phrases it scores at or below the Ratcliff/Obershelp ratio of
// Python's difflib, so the 0.6 cutoff is stricter here. A bare prefix such as
// "cerrar" against "cerrar pestaña" scores 0.43 and is rejected, where difflib
// gives 0.60 and would accept it.
package fuzzy

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultCutoff is the minimum ratio a fallback candidate must reach.
const DefaultCutoff = 0.6

// FallbackScore is the confidence reported for any fallback hit. It sits at
// the confirmation threshold so a fuzzy match never auto-executes.
const FallbackScore = 0.6

// Ratio returns 1 - distance/longest over runes. Two empty strings are
// identical.
func Ratio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Match returns the candidate closest to query when its ratio meets cutoff.
// Ties keep the earliest candidate. The score is FallbackScore on a hit.
func Match(query string, candidates []string, cutoff float64) (string, float64, bool) {
	best := -1
	bestRatio := 0.0
	for i, candidate := range candidates {
		r := Ratio(query, candidate)
		if r < cutoff {
			continue
		}
		if best < 0 || r > bestRatio {
			best = i
			bestRatio = r
		}
	}
	if best < 0 {
		return "", 0, false
	}
	return candidates[best], FallbackScore, true
}
