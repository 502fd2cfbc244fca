package extraction

import (
	"strings"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
)

// Review-problem thresholds.
const (
	// reviewMinCount promotes a repeated review concept to a weakness.
	reviewMinCount = 2

	// reviewHighCount raises the promoted weakness severity from 3 to 4.
	reviewHighCount = 3

	// weeklyBacklogMinSize emits the weekly aggregate backlog weakness.
	weeklyBacklogMinSize = 3
)

// PeriodicExtractor consumes the monthly and weekly review payloads, which
// share one shape but carry different baseline severities: the monthly review
// synthesizes more evidence, so its judgments weigh more.
type PeriodicExtractor struct {
	kind             report.Kind
	weaknessSeverity int
	strengthLevel    int
}

// NewMonthlyExtractor creates the extractor for monthly reviews.
func NewMonthlyExtractor() *PeriodicExtractor {
	return &PeriodicExtractor{
		kind:             report.KindMonthly,
		weaknessSeverity: 3,
		strengthLevel:    4,
	}
}

// NewWeeklyExtractor creates the extractor for weekly reviews.
func NewWeeklyExtractor() *PeriodicExtractor {
	return &PeriodicExtractor{
		kind:             report.KindWeekly,
		weaknessSeverity: 2,
		strengthLevel:    3,
	}
}

// Kind implements Extractor.
func (e *PeriodicExtractor) Kind() report.Kind {
	return e.kind
}

// Extract implements Extractor for the monthly/weekly payload shape.
func (e *PeriodicExtractor) Extract(payload report.AnalysisPayload) Result {
	var (
		topics         []report.TopicEvaluation
		improvements   []string
		achievements   []string
		reviewProblems []report.ReviewProblem
	)

	switch e.kind {
	case report.KindMonthly:
		if payload.Monthly == nil {
			return Result{}
		}
		topics = payload.Monthly.Topics
		improvements = payload.Monthly.Improvements
		achievements = payload.Monthly.Achievements
		reviewProblems = payload.Monthly.ReviewProblems
	default:
		if payload.Weekly == nil {
			return Result{}
		}
		topics = payload.Weekly.Topics
		improvements = payload.Weekly.Improvements
		achievements = payload.Weekly.Achievements
		reviewProblems = payload.Weekly.ReviewProblems
	}

	var out Result

	// Topic evaluations: "not good" topics become weaknesses, "excellent"
	// topics become strengths, at the kind's baseline scale.
	for _, t := range topics {
		if strings.TrimSpace(t.Topic) == "" {
			continue
		}
		switch {
		case t.IsPoor():
			out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
				Concept:  t.Topic,
				Category: CategorizeWeakness(t.Topic),
				Severity: e.weaknessSeverity,
			})
		case t.IsExcellent():
			out.Strengths = append(out.Strengths, StrengthCandidate{
				Concept:  t.Topic,
				Category: CategorizeStrength(t.Topic),
				Level:    e.strengthLevel,
			})
		}
	}

	// Free-text improvement/achievement lists, segmented per entry.
	for _, text := range improvements {
		for _, concept := range SegmentConcepts(text) {
			out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
				Concept:  concept,
				Category: CategorizeWeakness(concept),
				Severity: e.weaknessSeverity,
			})
		}
	}
	for _, text := range achievements {
		for _, concept := range SegmentConcepts(text) {
			out.Strengths = append(out.Strengths, StrengthCandidate{
				Concept:  concept,
				Category: CategorizeStrength(concept),
				Level:    e.strengthLevel,
			})
		}
	}

	out = e.extractFromReviewProblems(reviewProblems, out)

	return dedupe(out)
}

// extractFromReviewProblems promotes concepts that repeat across the
// review-problem list, and for weekly reviews adds one aggregate backlog
// weakness when the list itself is long.
func (e *PeriodicExtractor) extractFromReviewProblems(problems []report.ReviewProblem, out Result) Result {
	counts := map[string]int{}
	var order []string

	for _, p := range problems {
		concept := strings.TrimSpace(p.Concept)
		if concept == "" {
			continue
		}
		if _, ok := counts[concept]; !ok {
			order = append(order, concept)
		}
		counts[concept]++
	}

	for _, concept := range order {
		count := counts[concept]
		if count < reviewMinCount {
			continue
		}
		severity := 3
		if count >= reviewHighCount {
			severity = 4
		}
		out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
			Concept:  "복습 필요: " + concept,
			Category: CategorizeWeakness(concept),
			Severity: severity,
		})
	}

	if e.kind == report.KindWeekly && len(problems) >= weeklyBacklogMinSize {
		out.Weaknesses = append(out.Weaknesses, WeaknessCandidate{
			Concept:  "복습 문제 누적",
			Category: profile.WeaknessHabit,
			Severity: 3,
		})
	}

	return out
}
