package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
	"github.com/sooam-edu/tutoring-hub/pkg/retry"
)

func newIngestHandler(repo *fakeRepository, log *fakeChangeLog, bus *fakeBus, cache *fakeCache) *IngestReportHandler {
	n := 0
	deps := IngestReportDeps{
		Repository: repo,
		ChangeLog:  log,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Retry:      retry.Config{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond},
		Now:        func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) },
		NewID:      func() string { n++; return fmt.Sprintf("id-%d", n) },
	}
	// Assign only non-nil fakes so a nil *fakeBus/*fakeCache does not become a
	// non-nil interface value.
	if cache != nil {
		deps.Cache = cache
	}
	if bus != nil {
		deps.EventBus = bus
	}
	return NewIngestReportHandler(deps)
}

func ingestCmd(reportID string, t report.TestAnalysis) IngestReportCommand {
	return IngestReportCommand{
		StudentID: "student-1",
		ReportID:  reportID,
		Kind:      report.KindTest,
		Payload:   report.AnalysisPayload{Test: &t},
	}
}

func TestIngestReport_CreatesEntries(t *testing.T) {
	repo := newFakeRepository()
	log := &fakeChangeLog{}
	bus := &fakeBus{}
	cache := &fakeCache{}
	h := newIngestHandler(repo, log, bus, cache)

	result, err := h.Handle(context.Background(), ingestCmd("report-1", report.TestAnalysis{
		WeaknessText: "분수 나눗셈",
		StrengthText: "빠른 연산",
		Habits: []report.LearningHabit{
			{Description: "검토 없이 제출", Type: "나쁜 습관", Frequency: "자주"},
		},
	}))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Updated)

	require.Len(t, repo.weaknesses, 1)
	require.Len(t, repo.strengths, 1)
	require.Len(t, repo.patterns, 1)
	assert.Equal(t, "분수 나눗셈", repo.weaknesses[0].Concept)
	assert.Equal(t, profile.FrequencyOften, repo.patterns[0].Frequency)

	// One change event per mutation, all AI-attributed creations.
	require.Len(t, log.events, 3)
	for _, event := range log.events {
		assert.Nil(t, event.PreviousState)
		assert.NotNil(t, event.NewState)
		assert.Equal(t, profile.ActorAI, event.ChangedBy)
		assert.Equal(t, "report-1", event.ReportID)
	}

	// Three entry events plus the completion event.
	require.Len(t, bus.published, 4)
	assert.Equal(t, shared.EventReportIngested, bus.published[3].EventType())

	assert.Equal(t, []string{"student-1"}, cache.invalidated)
}

func TestIngestReport_ReingestMergesInsteadOfDuplicating(t *testing.T) {
	repo := newFakeRepository()
	log := &fakeChangeLog{}
	h := newIngestHandler(repo, log, nil, nil)

	payload := report.TestAnalysis{WeaknessText: "분수 나눗셈"}
	_, err := h.Handle(context.Background(), ingestCmd("report-1", payload))
	require.NoError(t, err)

	result, err := h.Handle(context.Background(), ingestCmd("report-2", payload))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	require.Len(t, repo.weaknesses, 1)
	w := repo.weaknesses[0]
	assert.Equal(t, 2, w.OccurrenceCount)
	assert.Equal(t, []string{"report-1", "report-2"}, w.RelatedReportIDs)
	assert.Equal(t, profile.WeaknessActive, w.Status)

	require.Len(t, log.events, 2)
	assert.Equal(t, profile.ChangeWeaknessUpdated, log.events[1].ChangeType)
	assert.NotNil(t, log.events[1].PreviousState)
}

func TestIngestReport_ResolvedWeaknessRecurs(t *testing.T) {
	repo := newFakeRepository()
	log := &fakeChangeLog{}
	bus := &fakeBus{}
	h := newIngestHandler(repo, log, bus, nil)
	ctx := context.Background()

	payload := report.TestAnalysis{WeaknessText: "분수 나눗셈"}
	_, err := h.Handle(ctx, ingestCmd("report-1", payload))
	require.NoError(t, err)

	_, err = repo.ResolveWeakness(ctx, repo.weaknesses[0].ID, time.Now().UTC())
	require.NoError(t, err)

	_, err = h.Handle(ctx, ingestCmd("report-2", payload))
	require.NoError(t, err)

	w := repo.weaknesses[0]
	assert.Equal(t, profile.WeaknessRecurring, w.Status)
	assert.NotNil(t, w.RecurredAt)

	require.Len(t, log.events, 2)
	assert.Equal(t, profile.ChangeWeaknessRecurred, log.events[1].ChangeType)

	var recurred bool
	for _, event := range bus.published {
		if event.EventType() == shared.EventWeaknessRecurred {
			recurred = true
		}
	}
	assert.True(t, recurred)
}

func TestIngestReport_WithinBatchMatching(t *testing.T) {
	repo := newFakeRepository()
	log := &fakeChangeLog{}
	h := newIngestHandler(repo, log, nil, nil)

	// The second segment shares the first's full text as a prefix, so it
	// merges into the entry created moments earlier in the same batch.
	result, err := h.Handle(context.Background(), ingestCmd("report-1", report.TestAnalysis{
		WeaknessText: "분수 나눗셈 오류, 분수 나눗셈 오류가 반복됨",
	}))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	require.Len(t, repo.weaknesses, 1)
	assert.Equal(t, 2, repo.weaknesses[0].OccurrenceCount)
}

func TestIngestReport_PartialFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.failCreateWeaknessConcept = "소수점 계산"
	log := &fakeChangeLog{}
	bus := &fakeBus{}
	h := newIngestHandler(repo, log, bus, nil)

	result, err := h.Handle(context.Background(), ingestCmd("report-1", report.TestAnalysis{
		WeaknessText: "분수 나눗셈, 소수점 계산",
	}))

	// Repository errors degrade the result, they do not fail the call.
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, profile.AttributeWeakness, result.Errors[0].AttributeType)
	assert.Equal(t, "소수점 계산", result.Errors[0].Text)
	assert.NotEmpty(t, result.ErrorMessage())

	// The surviving candidate stays applied.
	require.Len(t, repo.weaknesses, 1)
	assert.Equal(t, "분수 나눗셈", repo.weaknesses[0].Concept)
	require.Len(t, log.events, 1)

	require.NotEmpty(t, bus.published)
	assert.Equal(t, shared.EventIngestFailed, bus.published[len(bus.published)-1].EventType())
}

func TestIngestReport_MalformedCandidateDroppedSilently(t *testing.T) {
	repo := newFakeRepository()
	log := &fakeChangeLog{}
	h := newIngestHandler(repo, log, nil, nil)

	// A one-rune risk factor fails entity validation and is skipped without
	// counting as a failure.
	result, err := h.Handle(context.Background(), ingestCmd("report-1", report.TestAnalysis{
		RiskFactors: []report.RiskFactor{{Factor: "불", Severity: "높음"}},
	}))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.Applied())
	assert.Empty(t, repo.weaknesses)
	assert.Empty(t, log.events)
}

func TestIngestReport_ListFailureFailsWholeBatch(t *testing.T) {
	repo := newFakeRepository()
	repo.failListWeaknesses = fmt.Errorf("connection reset")
	h := newIngestHandler(repo, &fakeChangeLog{}, nil, nil)

	result, err := h.Handle(context.Background(), ingestCmd("report-1", report.TestAnalysis{
		WeaknessText: "분수 나눗셈, 소수점 계산",
	}))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 2)
}

func TestIngestReport_Validation(t *testing.T) {
	h := newIngestHandler(newFakeRepository(), &fakeChangeLog{}, nil, nil)
	ctx := context.Background()

	cmd := ingestCmd("report-1", report.TestAnalysis{})
	cmd.StudentID = ""
	_, err := h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	cmd = ingestCmd("", report.TestAnalysis{})
	_, err = h.Handle(ctx, cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	// Kind and payload section must agree.
	mismatched := IngestReportCommand{
		StudentID: "student-1",
		ReportID:  "report-1",
		Kind:      report.KindMonthly,
		Payload:   report.AnalysisPayload{Test: &report.TestAnalysis{}},
	}
	_, err = h.Handle(ctx, mismatched)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	unknown := mismatched
	unknown.Kind = "quarterly"
	_, err = h.Handle(ctx, unknown)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestIngestReport_OrderInsensitiveOutcome(t *testing.T) {
	run := func(weaknessText string) map[string]int {
		repo := newFakeRepository()
		h := newIngestHandler(repo, &fakeChangeLog{}, nil, nil)
		_, err := h.Handle(context.Background(), ingestCmd("report-1", report.TestAnalysis{
			WeaknessText: weaknessText,
		}))
		require.NoError(t, err)

		out := map[string]int{}
		for _, w := range repo.weaknesses {
			out[w.Concept] = w.OccurrenceCount
		}
		return out
	}

	// Distinct candidates end up the same regardless of extraction order.
	assert.Equal(t,
		run("분수 나눗셈, 소수점 계산"),
		run("소수점 계산, 분수 나눗셈"),
	)
}

func TestIngestReport_ChangeEventParity(t *testing.T) {
	repo := newFakeRepository()
	log := &fakeChangeLog{}
	h := newIngestHandler(repo, log, nil, nil)
	ctx := context.Background()

	result, err := h.Handle(ctx, ingestCmd("report-1", report.TestAnalysis{
		WeaknessText: "분수 나눗셈, 소수점 계산",
		StrengthText: "빠른 연산",
		Habits: []report.LearningHabit{
			{Description: "오답 노트 작성", Type: "좋은 습관", Frequency: "자주"},
		},
	}))
	require.NoError(t, err)

	byReport, err := log.ListByReport(ctx, "report-1")
	require.NoError(t, err)
	assert.Len(t, byReport, result.Applied())
}
