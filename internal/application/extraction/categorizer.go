package extraction

import (
	"strings"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORIZER
// Keyword-priority classification of free text into canonical categories.
// Pure and total - always returns a category, defaulting to the most generic.
// Labels arrive mostly in Korean with occasional English, so rules match both.
// ══════════════════════════════════════════════════════════════════════════════

// categoryRule is one keyword rule; rules are evaluated in priority order
// and the first hit wins.
type categoryRule struct {
	keywords []string
	category string
}

const (
	catConcept     = "concept"
	catCalculation = "calculation"
	catApplication = "application"
	catReading     = "reading"
	catHabit       = "habit"
	catCreativity  = "creativity"
)

// weaknessRules in priority order: calculation > application > reading > habit.
var weaknessRules = []categoryRule{
	{[]string{"계산", "연산", "사칙", "암산", "calculation", "arithmetic"}, catCalculation},
	{[]string{"응용", "활용", "적용", "application", "apply"}, catApplication},
	{[]string{"오독", "독해", "문제 이해", "지문", "읽기", "reading", "misread"}, catReading},
	{[]string{"습관", "부주의", "집중", "태도", "검토", "시간 관리", "careless", "habit", "attention"}, catHabit},
}

// strengthRules additionally recognize creativity; there is no habit strength.
var strengthRules = []categoryRule{
	{[]string{"계산", "연산", "사칙", "암산", "calculation", "arithmetic"}, catCalculation},
	{[]string{"응용", "활용", "적용", "application", "apply"}, catApplication},
	{[]string{"독해", "문제 이해", "지문", "읽기", "reading"}, catReading},
	{[]string{"창의", "발상", "아이디어", "creative"}, catCreativity},
}

// matchRules runs the rules in order and returns the first matching category.
func matchRules(rules []categoryRule, text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, true
			}
		}
	}
	return "", false
}

// CategorizeWeakness maps free text to a weakness category.
// Defaults to concept when no keyword rule applies.
func CategorizeWeakness(text string) profile.WeaknessCategory {
	if cat, ok := matchRules(weaknessRules, text); ok {
		return profile.WeaknessCategory(cat)
	}
	return profile.WeaknessConcept
}

// CategorizeStrength maps free text to a strength category.
// Defaults to concept when no keyword rule applies.
func CategorizeStrength(text string) profile.StrengthCategory {
	if cat, ok := matchRules(strengthRules, text); ok {
		return profile.StrengthCategory(cat)
	}
	return profile.StrengthConcept
}

// MapErrorType maps the closed set of item-level error-type labels onto a
// weakness category: calculation error -> calculation, concept error ->
// concept, misreading -> reading, carelessness and anything else -> habit.
func MapErrorType(errorType string) profile.WeaknessCategory {
	lower := strings.ToLower(errorType)
	switch {
	case strings.Contains(lower, "계산") || strings.Contains(lower, "calculation"):
		return profile.WeaknessCalculation
	case strings.Contains(lower, "개념") || strings.Contains(lower, "concept"):
		return profile.WeaknessConcept
	case strings.Contains(lower, "오독") || strings.Contains(lower, "misread"):
		return profile.WeaknessReading
	default:
		return profile.WeaknessHabit
	}
}

// ParseFrequency maps a frequency label onto the canonical frequency enum.
// Defaults to sometimes for unknown labels.
func ParseFrequency(label string) profile.Frequency {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "항상") || strings.Contains(lower, "always"):
		return profile.FrequencyAlways
	case strings.Contains(lower, "자주") || strings.Contains(lower, "often"):
		return profile.FrequencyOften
	case strings.Contains(lower, "드물") || strings.Contains(lower, "rare"):
		return profile.FrequencyRare
	default:
		return profile.FrequencySometimes
	}
}
