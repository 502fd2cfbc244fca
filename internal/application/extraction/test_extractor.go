package extraction

import (
	"fmt"
	"strings"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
)

// Test-extractor thresholds and baselines.
const (
	// testBaselineScale is the severity/level for free-text candidates.
	testBaselineScale = 3

	// errorTypeMinCount promotes an error type to a weakness candidate.
	errorTypeMinCount = 2

	// errorPatternMinCount additionally promotes it to an error pattern.
	errorPatternMinCount = 3

	// errorPatternAlwaysCount switches the pattern frequency to "always".
	errorPatternAlwaysCount = 5

	// masteryMinCount promotes an optimally-solved concept to a strength.
	masteryMinCount = 2

	// maxRelatedConcepts caps the concepts named in a promoted weakness.
	maxRelatedConcepts = 2
)

// TestExtractor consumes the per-test analysis payload.
type TestExtractor struct{}

// NewTestExtractor creates a test extractor.
func NewTestExtractor() *TestExtractor {
	return &TestExtractor{}
}

// Kind implements Extractor.
func (e *TestExtractor) Kind() report.Kind {
	return report.KindTest
}

// Extract implements Extractor for the test payload shape.
func (e *TestExtractor) Extract(payload report.AnalysisPayload) Result {
	if payload.Test == nil {
		return Result{}
	}
	t := *payload.Test
	var out Result

	// 1. Free-text weakness/strength summaries.
	for _, concept := range SegmentConcepts(t.WeaknessText) {
		out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
			Concept:  concept,
			Category: CategorizeWeakness(concept),
			Severity: testBaselineScale,
		})
	}
	for _, concept := range SegmentConcepts(t.StrengthText) {
		out.Strengths = append(out.Strengths, StrengthCandidate{
			Concept:  concept,
			Category: CategorizeStrength(concept),
			Level:    testBaselineScale,
		})
	}

	// 2. Item-level detail scan.
	out = e.extractFromItems(t.Items, out)

	// 3. Prescriptions.
	out = extractFromPrescriptions(t.Prescriptions, out)

	// 4. Risk factors.
	for _, rf := range t.RiskFactors {
		if strings.TrimSpace(rf.Factor) == "" {
			continue
		}
		out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
			Concept:  rf.Factor,
			Category: profile.WeaknessHabit,
			Severity: riskSeverity(rf.Severity),
		})
	}

	// 5. Recorded learning habits.
	for _, h := range t.Habits {
		if strings.TrimSpace(h.Description) == "" {
			continue
		}
		out.Patterns = append(out.Patterns, PatternCandidate{
			Type:        profile.PatternHabit,
			Description: h.Description,
			IsPositive:  h.IsGood(),
			Frequency:   ParseFrequency(h.Frequency),
		})
	}

	// 6. Capability score map.
	out.Strengths = append(out.Strengths, capabilityStrengths(t.Capabilities)...)

	return dedupe(out)
}

// errorTally accumulates item-level statistics for one error type.
type errorTally struct {
	count    int
	concepts []string
}

// extractFromItems scans the item-level records: promotes repeated error
// types to weaknesses and patterns, repeated optimal solutions to mastery
// strengths, and creative solutions to one aggregated creativity strength.
func (e *TestExtractor) extractFromItems(items []report.ItemDetail, out Result) Result {
	errTallies := map[string]*errorTally{}
	var errOrder []string

	optimalCounts := map[string]int{}
	var optimalOrder []string

	creativeCount := 0

	for _, item := range items {
		if item.IsMiss() && strings.TrimSpace(item.ErrorType) != "" {
			tally, ok := errTallies[item.ErrorType]
			if !ok {
				tally = &errorTally{}
				errTallies[item.ErrorType] = tally
				errOrder = append(errOrder, item.ErrorType)
			}
			tally.count++
			if c := strings.TrimSpace(item.KeyConcept); c != "" && len(tally.concepts) < maxRelatedConcepts && !contains(tally.concepts, c) {
				tally.concepts = append(tally.concepts, c)
			}
			continue
		}

		if item.SolvedOptimally() {
			if c := strings.TrimSpace(item.KeyConcept); c != "" {
				if _, ok := optimalCounts[c]; !ok {
					optimalOrder = append(optimalOrder, c)
				}
				optimalCounts[c]++
			}
		}
		if item.SolvedCreatively() {
			creativeCount++
		}
	}

	for _, errorType := range errOrder {
		tally := errTallies[errorType]
		if tally.count < errorTypeMinCount {
			continue
		}

		concept := errorType
		if len(tally.concepts) > 0 {
			concept = fmt.Sprintf("%s (%s)", errorType, strings.Join(tally.concepts, ", "))
		}
		out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
			Concept:  concept,
			Category: MapErrorType(errorType),
			Severity: clampScale(tally.count + 2),
		})

		if tally.count >= errorPatternMinCount {
			frequency := profile.FrequencyOften
			if tally.count >= errorPatternAlwaysCount {
				frequency = profile.FrequencyAlways
			}
			out.Patterns = append(out.Patterns, PatternCandidate{
				Type:        profile.PatternError,
				Description: "반복적인 " + errorType,
				IsPositive:  false,
				Frequency:   frequency,
			})
		}
	}

	for _, concept := range optimalOrder {
		count := optimalCounts[concept]
		if count < masteryMinCount {
			continue
		}
		out.Strengths = append(out.Strengths, StrengthCandidate{
			Concept:  concept + " 숙달",
			Category: CategorizeStrength(concept),
			Level:    clampScale(count + 2),
		})
	}

	if creativeCount > 0 {
		out.Strengths = append(out.Strengths, StrengthCandidate{
			Concept:  "창의적 문제 해결",
			Category: profile.StrengthCreativity,
			Level:    clampScale(creativeCount + 2),
		})
	}

	return out
}

// extractFromPrescriptions maps corrective prescriptions: concept corrections
// become weaknesses with priority-derived severity, habit corrections become
// habit pattern candidates. Shared with the consolidated extractor.
func extractFromPrescriptions(prescriptions []report.Prescription, out Result) Result {
	for _, p := range prescriptions {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		switch {
		case p.IsConceptCorrection():
			out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
				Concept:  p.Title,
				Category: CategorizeWeakness(p.Title),
				Severity: severityForPriority(p.Priority),
			})
		case p.IsHabitCorrection():
			out.Patterns = append(out.Patterns, PatternCandidate{
				Type:        profile.PatternHabit,
				Description: p.Title,
				IsPositive:  false,
				Frequency:   profile.FrequencyOften,
			})
		}
	}
	return out
}

// riskSeverity maps a stated risk level onto a severity.
func riskSeverity(level string) int {
	lower := strings.ToLower(level)
	switch {
	case strings.Contains(lower, "높음") || strings.Contains(lower, "high"):
		return 5
	case strings.Contains(lower, "낮음") || strings.Contains(lower, "low"):
		return 2
	default:
		return 3
	}
}

// capabilityAxis names one axis of the five-axis capability map.
type capabilityAxis struct {
	concept  string
	category profile.StrengthCategory
	score    int
}

// capabilityStrengths turns capability scores into strength candidates:
// an axis contributes only at 70 or above, level scaled 3/4/5 at 70/80/90.
func capabilityStrengths(c report.CapabilityScores) []StrengthCandidate {
	axes := []capabilityAxis{
		{"계산 속도", profile.StrengthCalculation, c.CalculationSpeed},
		{"계산 정확도", profile.StrengthCalculation, c.CalculationAccuracy},
		{"개념 응용력", profile.StrengthApplication, c.ConceptApplication},
		{"논리적 사고력", profile.StrengthConcept, c.LogicalThinking},
		{"시험 불안 조절", profile.StrengthConcept, c.AnxietyControl},
	}

	var out []StrengthCandidate
	for _, axis := range axes {
		level := capabilityLevel(axis.score)
		if level == 0 {
			continue
		}
		out = append(out, StrengthCandidate{
			Concept:  axis.concept,
			Category: axis.category,
			Level:    level,
		})
	}
	return out
}

// capabilityLevel scales a 0-100 axis score onto the 1-5 level scale;
// zero means below threshold.
func capabilityLevel(score int) int {
	switch {
	case score >= 90:
		return 5
	case score >= 80:
		return 4
	case score >= 70:
		return 3
	default:
		return 0
	}
}

// contains reports whether list contains value.
func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
