package extraction

import (
	"strings"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// CANDIDATE OBSERVATIONS
// A candidate is a normalized fact extracted from one payload, not yet merged
// into the profile.
// ══════════════════════════════════════════════════════════════════════════════

// WeaknessCandidate is one extracted weakness observation.
type WeaknessCandidate struct {
	Concept  string
	Category profile.WeaknessCategory
	Severity int
}

// StrengthCandidate is one extracted strength observation.
type StrengthCandidate struct {
	Concept  string
	Category profile.StrengthCategory
	Level    int
}

// PatternCandidate is one extracted behavioral pattern observation.
type PatternCandidate struct {
	Type        profile.PatternType
	Description string
	IsPositive  bool
	Frequency   profile.Frequency
}

// Result holds the three candidate lists one extraction call produced,
// in extraction order and deduplicated within the call.
type Result struct {
	Weaknesses []WeaknessCandidate
	Strengths  []StrengthCandidate
	Patterns   []PatternCandidate
}

// Total returns the number of candidates across all three lists.
func (r Result) Total() int {
	return len(r.Weaknesses) + len(r.Strengths) + len(r.Patterns)
}

// dedupe removes within-call duplicates as a pure fold over the ordered
// candidate lists: the first candidate with a given lower-cased text wins,
// so one payload never yields two candidates with identical text.
func dedupe(r Result) Result {
	out := Result{}

	seen := map[string]bool{}
	for _, c := range r.Weaknesses {
		key := strings.ToLower(c.Concept)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Weaknesses = append(out.Weaknesses, c)
	}

	seen = map[string]bool{}
	for _, c := range r.Strengths {
		key := strings.ToLower(c.Concept)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Strengths = append(out.Strengths, c)
	}

	seen = map[string]bool{}
	for _, c := range r.Patterns {
		key := strings.ToLower(c.Description)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Patterns = append(out.Patterns, c)
	}

	return out
}

// clampScale caps a 1-5 scale value at 5.
func clampScale(v int) int {
	if v > 5 {
		return 5
	}
	if v < 1 {
		return 1
	}
	return v
}
