// Package matching decides whether an incoming candidate observation is
// "the same" as a profile entry already recorded for the student.
//
// The similarity heuristic sits behind SimilarityStrategy so it is swappable
// and independently testable. The engine is wired with the prefix-substring
// strategy: deliberately the simplest workable heuristic, with no ranking
// and no score threshold - absence of a match always means "create new".
package matching

import (
	"strings"
)

// TextKind distinguishes the two matched text forms: short concept labels
// and longer pattern descriptions.
type TextKind int

const (
	// KindConcept - weakness/strength concept labels.
	KindConcept TextKind = iota
	// KindDescription - behavioral pattern descriptions.
	KindDescription
)

// SimilarityStrategy reports whether a stored text and a candidate text
// refer to the same underlying concept.
type SimilarityStrategy interface {
	// Name identifies the strategy for logging.
	Name() string

	// Similar reports whether existing and candidate texts match.
	Similar(existing, candidate string, kind TextKind) bool
}

// ══════════════════════════════════════════════════════════════════════════════
// EXACT NORMALIZED
// ══════════════════════════════════════════════════════════════════════════════

// ExactNormalized matches only case-insensitively identical trimmed texts.
type ExactNormalized struct{}

// Name implements SimilarityStrategy.
func (ExactNormalized) Name() string { return "exact-normalized" }

// Similar implements SimilarityStrategy.
func (ExactNormalized) Similar(existing, candidate string, _ TextKind) bool {
	return normalize(existing) == normalize(candidate)
}

// ══════════════════════════════════════════════════════════════════════════════
// PREFIX SUBSTRING (default)
// ══════════════════════════════════════════════════════════════════════════════

// PrefixSubstring matches when either text contains the first N runes of the
// other, case-insensitively. N is 10 for concepts and 20 for descriptions.
//
// Known failure modes: two distinct concepts sharing a 10-rune prefix merge
// falsely, and synonymous concepts phrased differently never merge.
type PrefixSubstring struct {
	// ConceptPrefix / DescriptionPrefix are the compared prefix lengths
	// in runes. Zero values fall back to the defaults.
	ConceptPrefix     int
	DescriptionPrefix int
}

// Default prefix lengths.
const (
	DefaultConceptPrefix     = 10
	DefaultDescriptionPrefix = 20
)

// Name implements SimilarityStrategy.
func (PrefixSubstring) Name() string { return "prefix-substring" }

// Similar implements SimilarityStrategy.
func (s PrefixSubstring) Similar(existing, candidate string, kind TextKind) bool {
	n := s.ConceptPrefix
	if kind == KindDescription {
		n = s.DescriptionPrefix
	}
	if n == 0 {
		n = DefaultConceptPrefix
		if kind == KindDescription {
			n = DefaultDescriptionPrefix
		}
	}

	a := normalize(existing)
	b := normalize(candidate)
	if a == "" || b == "" {
		return false
	}

	return strings.Contains(a, prefixRunes(b, n)) || strings.Contains(b, prefixRunes(a, n))
}

// ══════════════════════════════════════════════════════════════════════════════
// EDIT DISTANCE
// ══════════════════════════════════════════════════════════════════════════════

// EditDistance matches when the Levenshtein distance between the normalized
// texts stays within MaxDistance. Available as a stricter alternative; not
// wired as the engine default.
type EditDistance struct {
	// MaxDistance is the inclusive edit-distance threshold. Zero falls
	// back to 3.
	MaxDistance int
}

// Name implements SimilarityStrategy.
func (EditDistance) Name() string { return "edit-distance" }

// Similar implements SimilarityStrategy.
func (s EditDistance) Similar(existing, candidate string, _ TextKind) bool {
	max := s.MaxDistance
	if max == 0 {
		max = 3
	}
	return levenshtein(normalize(existing), normalize(candidate)) <= max
}

// levenshtein computes the edit distance over runes.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// normalize lowercases and trims the compared text.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
