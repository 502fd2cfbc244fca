package matching

import (
	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
)

// Matcher finds at most one existing profile entry for a candidate, scanning
// the student's entries in stored order and returning the first hit. No
// ranking is applied: the heuristic either matches or the candidate creates
// a new entry.
type Matcher struct {
	strategy SimilarityStrategy
}

// NewMatcher creates a matcher with the given strategy.
// A nil strategy falls back to the default prefix-substring heuristic.
func NewMatcher(strategy SimilarityStrategy) *Matcher {
	if strategy == nil {
		strategy = PrefixSubstring{}
	}
	return &Matcher{strategy: strategy}
}

// Strategy returns the wired similarity strategy.
func (m *Matcher) Strategy() SimilarityStrategy {
	return m.strategy
}

// FindWeakness returns the first weakness whose concept matches, or nil.
func (m *Matcher) FindWeakness(concept string, existing []*profile.Weakness) *profile.Weakness {
	for _, w := range existing {
		if m.strategy.Similar(w.Concept, concept, KindConcept) {
			return w
		}
	}
	return nil
}

// FindStrength returns the first strength whose concept matches, or nil.
func (m *Matcher) FindStrength(concept string, existing []*profile.Strength) *profile.Strength {
	for _, s := range existing {
		if m.strategy.Similar(s.Concept, concept, KindConcept) {
			return s
		}
	}
	return nil
}

// FindPattern returns the first pattern whose description matches, or nil.
// Only patterns of the same type are considered: a habit observation never
// merges into an error pattern.
func (m *Matcher) FindPattern(patternType profile.PatternType, description string, existing []*profile.Pattern) *profile.Pattern {
	for _, p := range existing {
		if p.Type != patternType {
			continue
		}
		if m.strategy.Similar(p.Description, description, KindDescription) {
			return p
		}
	}
	return nil
}
