// Package report defines the analysis payload shapes produced by the
// (external) report generator after each learning assessment, plus the
// report kind that selects which extractor applies.
//
// The payloads arrive as free-form JSON; fields the generator omitted simply
// decode to zero values and the extractors skip the candidates they would
// have produced.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT KIND
// ══════════════════════════════════════════════════════════════════════════════

// Kind is the category of source analysis payload.
type Kind string

const (
	KindTest         Kind = "test"
	KindMonthly      Kind = "monthly"
	KindWeekly       Kind = "weekly"
	KindConsolidated Kind = "consolidated"
)

// IsValid reports whether the kind is one of the known values.
func (k Kind) IsValid() bool {
	switch k {
	case KindTest, KindMonthly, KindWeekly, KindConsolidated:
		return true
	default:
		return false
	}
}

// ParseKind parses a report kind from its string form.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown report kind: %q", s)
	}
	return k, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYLOAD ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// ErrMissingSection is returned when the payload lacks the section the
// declared report kind requires.
var ErrMissingSection = errors.New("report: payload is missing the section for its kind")

// AnalysisPayload is the envelope around the four known payload shapes.
// Exactly one section is expected to be populated, selected by Kind.
type AnalysisPayload struct {
	Test         *TestAnalysis         `json:"test,omitempty"`
	Monthly      *MonthlyAnalysis      `json:"monthly,omitempty"`
	Weekly       *WeeklyAnalysis       `json:"weekly,omitempty"`
	Consolidated *ConsolidatedAnalysis `json:"consolidated,omitempty"`
}

// Decode parses an analysis payload from raw JSON.
func Decode(raw []byte) (AnalysisPayload, error) {
	var payload AnalysisPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return AnalysisPayload{}, fmt.Errorf("report: decode payload: %w", err)
	}
	return payload, nil
}

// Validate checks that the section matching the kind is present.
func (p AnalysisPayload) Validate(kind Kind) error {
	switch kind {
	case KindTest:
		if p.Test == nil {
			return ErrMissingSection
		}
	case KindMonthly:
		if p.Monthly == nil {
			return ErrMissingSection
		}
	case KindWeekly:
		if p.Weekly == nil {
			return ErrMissingSection
		}
	case KindConsolidated:
		if p.Consolidated == nil {
			return ErrMissingSection
		}
	default:
		return fmt.Errorf("unknown report kind: %q", kind)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TEST ANALYSIS
// ══════════════════════════════════════════════════════════════════════════════

// TestAnalysis is the per-test analysis payload: free-text summaries plus
// item-level detail, prescriptions, risk factors, habits and capability scores.
type TestAnalysis struct {
	// Summary - overall free-text assessment.
	Summary string `json:"summary"`

	// WeaknessText / StrengthText - free-text summaries, segmented into
	// candidate concepts by the extractor.
	WeaknessText string `json:"weaknesses"`
	StrengthText string `json:"strengths"`

	// Items - per-question detail records.
	Items []ItemDetail `json:"items"`

	// Prescriptions - recommended corrective actions.
	Prescriptions []Prescription `json:"prescriptions"`

	// RiskFactors - learning risks the generator flagged.
	RiskFactors []RiskFactor `json:"riskFactors"`

	// Habits - recorded learning habits (good and bad).
	Habits []LearningHabit `json:"habits"`

	// Capabilities - the five-axis capability score map (0-100 per axis).
	Capabilities CapabilityScores `json:"capabilities"`
}

// ItemDetail is one item-level (per-question) record.
type ItemDetail struct {
	Number           int    `json:"number"`
	IsCorrect        bool   `json:"isCorrect"`
	IsPartial        bool   `json:"isPartial"`
	ErrorType        string `json:"errorType"`
	KeyConcept       string `json:"keyConcept"`
	SolutionStrategy string `json:"solutionStrategy"`
}

// Answered-item helpers. Labels come from the generator in Korean with
// occasional English fallbacks, so matching is keyword-based.

// SolvedOptimally reports whether a correct item used the optimal strategy.
func (i ItemDetail) SolvedOptimally() bool {
	return i.IsCorrect && containsAny(i.SolutionStrategy, "최적", "optimal")
}

// SolvedCreatively reports whether a correct item used a creative approach.
func (i ItemDetail) SolvedCreatively() bool {
	return i.IsCorrect && containsAny(i.SolutionStrategy, "창의", "creative")
}

// IsMiss reports whether the item was answered incorrectly or partially.
func (i ItemDetail) IsMiss() bool {
	return !i.IsCorrect || i.IsPartial
}

// Prescription is one recommended corrective action.
type Prescription struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

// IsConceptCorrection reports whether this prescribes a concept correction.
func (p Prescription) IsConceptCorrection() bool {
	return containsAny(p.Type, "개념", "concept")
}

// IsHabitCorrection reports whether this prescribes a habit correction.
func (p Prescription) IsHabitCorrection() bool {
	return containsAny(p.Type, "습관", "habit")
}

// RiskFactor is one flagged learning risk.
type RiskFactor struct {
	Factor   string `json:"factor"`
	Severity string `json:"severity"`
}

// LearningHabit is one recorded habit with a polarity and frequency label.
type LearningHabit struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Frequency   string `json:"frequency"`
}

// IsGood reports whether this is a positive habit.
func (h LearningHabit) IsGood() bool {
	return containsAny(h.Type, "좋은", "good", "positive")
}

// CapabilityScores is the five-axis capability score map (0-100 per axis).
type CapabilityScores struct {
	CalculationSpeed    int `json:"calculationSpeed"`
	CalculationAccuracy int `json:"calculationAccuracy"`
	ConceptApplication  int `json:"conceptApplication"`
	LogicalThinking     int `json:"logicalThinking"`
	AnxietyControl      int `json:"anxietyControl"`
}

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY / WEEKLY ANALYSIS
// ══════════════════════════════════════════════════════════════════════════════

// MonthlyAnalysis is the monthly review payload.
type MonthlyAnalysis struct {
	Topics         []TopicEvaluation `json:"topics"`
	Improvements   []string          `json:"improvements"`
	Achievements   []string          `json:"achievements"`
	ReviewProblems []ReviewProblem   `json:"reviewProblems"`
}

// WeeklyAnalysis is the weekly review payload. Same shape as monthly, kept
// as its own type because the two kinds carry different baseline severities.
type WeeklyAnalysis struct {
	Topics         []TopicEvaluation `json:"topics"`
	Improvements   []string          `json:"improvements"`
	Achievements   []string          `json:"achievements"`
	ReviewProblems []ReviewProblem   `json:"reviewProblems"`
}

// TopicEvaluation is one topic with the teacher's evaluation label.
type TopicEvaluation struct {
	Topic      string `json:"topic"`
	Evaluation string `json:"evaluation"`
}

// IsPoor reports whether the topic was evaluated "not good".
func (t TopicEvaluation) IsPoor() bool {
	return containsAny(t.Evaluation, "미흡", "부족", "not good", "poor")
}

// IsExcellent reports whether the topic was evaluated "excellent".
func (t TopicEvaluation) IsExcellent() bool {
	return containsAny(t.Evaluation, "우수", "매우", "excellent")
}

// ReviewProblem is one problem the student got wrong and must review.
type ReviewProblem struct {
	Number  int    `json:"number"`
	Concept string `json:"concept"`
}

// ══════════════════════════════════════════════════════════════════════════════
// CONSOLIDATED ANALYSIS
// ══════════════════════════════════════════════════════════════════════════════

// ConsolidatedAnalysis wraps a teacher-curated comparison across multiple
// prior reports. Its free text is segmented like the test payload but with
// elevated baseline severity, since this judgment already synthesizes
// several observations.
type ConsolidatedAnalysis struct {
	ComparisonSummary string         `json:"comparisonSummary"`
	WeaknessText      string         `json:"weaknesses"`
	StrengthText      string         `json:"strengths"`
	Prescriptions     []Prescription `json:"prescriptions"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// containsAny reports whether s contains any of the keywords, case-insensitively.
func containsAny(s string, keywords ...string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
