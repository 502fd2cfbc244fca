package extraction

import (
	"fmt"

	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
)

// Extractor turns one analysis payload shape into candidate observation
// lists. Extractors are pure: a payload missing the expected section simply
// yields an empty result, and malformed sub-fields drop only the candidates
// they would have produced.
type Extractor interface {
	// Kind returns the report kind this extractor consumes.
	Kind() report.Kind

	// Extract produces the deduplicated candidate lists for the payload.
	Extract(payload report.AnalysisPayload) Result
}

// ForKind returns the extractor for a report kind.
func ForKind(kind report.Kind) (Extractor, error) {
	switch kind {
	case report.KindTest:
		return NewTestExtractor(), nil
	case report.KindMonthly:
		return NewMonthlyExtractor(), nil
	case report.KindWeekly:
		return NewWeeklyExtractor(), nil
	case report.KindConsolidated:
		return NewConsolidatedExtractor(), nil
	default:
		return nil, fmt.Errorf("extraction: no extractor for report kind %q", kind)
	}
}

// severityForPriority maps a prescription priority onto a severity:
// the most urgent prescriptions (priority 1) carry the highest severity.
func severityForPriority(priority int) int {
	switch priority {
	case 1:
		return 5
	case 2:
		return 4
	default:
		return 3
	}
}
