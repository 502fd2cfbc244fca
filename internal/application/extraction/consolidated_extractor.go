package extraction

import (
	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
)

// consolidatedBaselineScale elevates consolidated free-text candidates:
// the teacher-curated comparison already synthesizes multiple prior reports.
const consolidatedBaselineScale = 4

// ConsolidatedExtractor consumes the consolidated comparison payload.
type ConsolidatedExtractor struct{}

// NewConsolidatedExtractor creates a consolidated extractor.
func NewConsolidatedExtractor() *ConsolidatedExtractor {
	return &ConsolidatedExtractor{}
}

// Kind implements Extractor.
func (e *ConsolidatedExtractor) Kind() report.Kind {
	return report.KindConsolidated
}

// Extract implements Extractor for the consolidated payload shape.
// Free text segments exactly like the test payload but at the elevated
// baseline; concept-correction prescriptions map as in the test extractor.
func (e *ConsolidatedExtractor) Extract(payload report.AnalysisPayload) Result {
	if payload.Consolidated == nil {
		return Result{}
	}
	c := *payload.Consolidated
	var out Result

	for _, concept := range SegmentConcepts(c.WeaknessText) {
		out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
			Concept:  concept,
			Category: CategorizeWeakness(concept),
			Severity: consolidatedBaselineScale,
		})
	}
	for _, concept := range SegmentConcepts(c.StrengthText) {
		out.Strengths = append(out.Strengths, StrengthCandidate{
			Concept:  concept,
			Category: CategorizeStrength(concept),
			Level:    consolidatedBaselineScale,
		})
	}

	out = extractFromPrescriptions(c.Prescriptions, out)

	return dedupe(out)
}
