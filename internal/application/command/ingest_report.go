// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the student profile.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sooam-edu/tutoring-hub/internal/application/extraction"
	"github.com/sooam-edu/tutoring-hub/internal/application/matching"
	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/report"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
	"github.com/sooam-edu/tutoring-hub/pkg/keyedmutex"
	"github.com/sooam-edu/tutoring-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// INGEST REPORT COMMAND
// The core engine operation: normalize one analysis payload into candidate
// observations and merge each of them into the student's longitudinal
// profile, logging one immutable change event per mutation.
// ══════════════════════════════════════════════════════════════════════════════

// IngestReportCommand contains the data needed to ingest one analysis payload.
type IngestReportCommand struct {
	// StudentID - the student whose profile evolves.
	StudentID string

	// ReportID - the report the payload came from.
	ReportID string

	// Kind selects the extractor for the payload shape.
	Kind report.Kind

	// Payload is the decoded analysis payload.
	Payload report.AnalysisPayload

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c IngestReportCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("ingest", "Validate", shared.ErrInvalidInput, "student_id is required")
	}
	if c.ReportID == "" {
		return shared.NewDomainError("ingest", "Validate", shared.ErrInvalidInput, "report_id is required")
	}
	if !c.Kind.IsValid() {
		return shared.NewDomainError("ingest", "Validate", shared.ErrInvalidInput,
			fmt.Sprintf("unknown report kind %q", c.Kind))
	}
	if err := c.Payload.Validate(c.Kind); err != nil {
		return shared.WrapError("ingest", "Validate", shared.ErrInvalidInput, "payload does not match kind", err)
	}
	return nil
}

// CandidateError records one candidate that could not be persisted.
type CandidateError struct {
	AttributeType profile.AttributeType
	Text          string
	Err           string
}

// IngestReportResult contains the aggregate outcome of one ingestion.
// Partial-failure tolerant: Success is false if at least one candidate hit a
// repository error, while all other candidates stay applied.
type IngestReportResult struct {
	// Success - false iff at least one repository error occurred.
	Success bool

	// Created / Updated - how many profile entries were created or merged.
	Created int
	Updated int

	// Errors - the candidates that were skipped after repository failures.
	Errors []CandidateError

	// IngestedAt - when the ingestion ran.
	IngestedAt time.Time
}

// Applied returns the number of successfully applied candidates.
func (r IngestReportResult) Applied() int {
	return r.Created + r.Updated
}

// ErrorMessage joins the candidate errors into one message, empty on success.
func (r IngestReportResult) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}
	msg := fmt.Sprintf("%d of %d candidates failed", len(r.Errors), r.Applied()+len(r.Errors))
	for _, e := range r.Errors {
		msg += fmt.Sprintf("; %s %q: %s", e.AttributeType, e.Text, e.Err)
	}
	return msg
}

// IngestReportDeps wires the handler's collaborators.
type IngestReportDeps struct {
	Repository profile.Repository
	ChangeLog  profile.ChangeLog
	Matcher    *matching.Matcher

	// Cache is invalidated after successful mutations. Optional.
	Cache profile.Cache

	// EventBus receives profile events after the ingestion. Optional.
	EventBus shared.EventBus

	Logger *slog.Logger
	Retry  retry.Config

	// Now and NewID exist for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

// IngestReportHandler executes IngestReportCommand.
//
// All ingestions for one student are serialized through a keyed mutex;
// ingestions for different students run in parallel. Candidates are
// processed strictly in extraction order because occurrence counts and
// matching are order-sensitive within a batch.
type IngestReportHandler struct {
	repo    profile.Repository
	changes profile.ChangeLog
	matcher *matching.Matcher
	cache   profile.Cache
	bus     shared.EventBus
	logger  *slog.Logger
	retry   retry.Config
	locks   *keyedmutex.KeyedMutex
	now     func() time.Time
	newID   func() string
}

// NewIngestReportHandler creates the handler, filling optional dependencies
// with defaults.
func NewIngestReportHandler(deps IngestReportDeps) *IngestReportHandler {
	if deps.Matcher == nil {
		deps.Matcher = matching.NewMatcher(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &IngestReportHandler{
		repo:    deps.Repository,
		changes: deps.ChangeLog,
		matcher: deps.Matcher,
		cache:   deps.Cache,
		bus:     deps.EventBus,
		logger:  deps.Logger,
		retry:   deps.Retry,
		locks:   keyedmutex.New(),
		now:     deps.Now,
		newID:   deps.NewID,
	}
}

// Handle ingests one analysis payload into the student profile.
// No panic escapes this boundary; all paths resolve to the result structure.
func (h *IngestReportHandler) Handle(ctx context.Context, cmd IngestReportCommand) (result IngestReportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = shared.NewDomainError("ingest", "Handle", shared.ErrInvalidState,
				fmt.Sprintf("panic during ingestion: %v", r))
			result.Success = false
		}
	}()

	if err := cmd.Validate(); err != nil {
		return IngestReportResult{}, err
	}

	extractor, err := extraction.ForKind(cmd.Kind)
	if err != nil {
		return IngestReportResult{}, err
	}

	h.locks.Lock(cmd.StudentID)
	defer h.locks.Unlock(cmd.StudentID)

	now := h.now()
	result.IngestedAt = now

	candidates := extractor.Extract(cmd.Payload)
	logger := h.logger.With(
		slog.String("student_id", cmd.StudentID),
		slog.String("report_id", cmd.ReportID),
		slog.String("kind", string(cmd.Kind)),
	)
	logger.Info("ingesting analysis payload",
		slog.Int("weakness_candidates", len(candidates.Weaknesses)),
		slog.Int("strength_candidates", len(candidates.Strengths)),
		slog.Int("pattern_candidates", len(candidates.Patterns)),
	)

	var busEvents []shared.Event

	busEvents = h.processWeaknesses(ctx, cmd, candidates.Weaknesses, now, &result, busEvents, logger)
	busEvents = h.processStrengths(ctx, cmd, candidates.Strengths, now, &result, busEvents, logger)
	busEvents = h.processPatterns(ctx, cmd, candidates.Patterns, now, &result, busEvents, logger)

	result.Success = len(result.Errors) == 0

	if result.Applied() > 0 && h.cache != nil {
		if cacheErr := h.cache.Invalidate(ctx, cmd.StudentID); cacheErr != nil {
			logger.Warn("profile cache invalidation failed", slog.Any("error", cacheErr))
		}
	}

	h.publish(ctx, cmd, result, busEvents, logger)

	logger.Info("ingestion finished",
		slog.Bool("success", result.Success),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("failed", len(result.Errors)),
	)

	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Per-type candidate loops
// Each loop loads the student's entries once and keeps the pool current as
// candidates are applied, so later candidates in the batch can match entries
// created earlier in the same batch.
// ─────────────────────────────────────────────────────────────────────────────

func (h *IngestReportHandler) processWeaknesses(
	ctx context.Context,
	cmd IngestReportCommand,
	candidates []extraction.WeaknessCandidate,
	now time.Time,
	result *IngestReportResult,
	busEvents []shared.Event,
	logger *slog.Logger,
) []shared.Event {
	if len(candidates) == 0 {
		return busEvents
	}

	pool, err := h.repo.ListWeaknesses(ctx, cmd.StudentID)
	if err != nil {
		for _, cand := range candidates {
			result.Errors = append(result.Errors, CandidateError{profile.AttributeWeakness, cand.Concept, err.Error()})
		}
		return busEvents
	}

	for _, cand := range candidates {
		event, applyErr := h.applyWeakness(ctx, cmd, cand, &pool, now)
		if applyErr != nil {
			logger.Error("weakness candidate failed",
				slog.String("concept", cand.Concept), slog.Any("error", applyErr))
			result.Errors = append(result.Errors, CandidateError{profile.AttributeWeakness, cand.Concept, applyErr.Error()})
			continue
		}
		if event == nil {
			continue
		}
		if event.PreviousState == nil {
			result.Created++
		} else {
			result.Updated++
		}
		busEvents = append(busEvents, profile.NewEntryChangedEvent(event, cand.Concept))
	}
	return busEvents
}

func (h *IngestReportHandler) applyWeakness(
	ctx context.Context,
	cmd IngestReportCommand,
	cand extraction.WeaknessCandidate,
	pool *[]*profile.Weakness,
	now time.Time,
) (*profile.ChangeEvent, error) {
	match := h.matcher.FindWeakness(cand.Concept, *pool)

	if match == nil {
		w, err := profile.NewWeakness(profile.NewWeaknessParams{
			ID:         h.newID(),
			StudentID:  cmd.StudentID,
			Concept:    cand.Concept,
			Category:   cand.Category,
			Severity:   cand.Severity,
			ReportID:   cmd.ReportID,
			DetectedAt: now,
		})
		if err != nil {
			// Malformed candidate: drop it and keep extracting.
			h.logger.Debug("dropping malformed weakness candidate",
				slog.String("concept", cand.Concept), slog.Any("error", err))
			return nil, nil
		}
		if err := h.write(ctx, func(ctx context.Context) error {
			return h.repo.CreateWeakness(ctx, w)
		}); err != nil {
			return nil, err
		}
		*pool = append(*pool, w)
		return h.logChange(ctx, cmd, profile.ChangeWeaknessAdded, profile.AttributeWeakness, w.ID, nil, w.Snapshot(), now)
	}

	before := match.Snapshot()
	updated := match.Clone()
	changeType := updated.ApplyObservation(cand.Severity, cmd.ReportID, now)
	if err := h.write(ctx, func(ctx context.Context) error {
		return h.repo.UpdateWeakness(ctx, updated)
	}); err != nil {
		return nil, err
	}
	*match = *updated
	return h.logChange(ctx, cmd, changeType, profile.AttributeWeakness, updated.ID, before, updated.Snapshot(), now)
}

func (h *IngestReportHandler) processStrengths(
	ctx context.Context,
	cmd IngestReportCommand,
	candidates []extraction.StrengthCandidate,
	now time.Time,
	result *IngestReportResult,
	busEvents []shared.Event,
	logger *slog.Logger,
) []shared.Event {
	if len(candidates) == 0 {
		return busEvents
	}

	pool, err := h.repo.ListStrengths(ctx, cmd.StudentID)
	if err != nil {
		for _, cand := range candidates {
			result.Errors = append(result.Errors, CandidateError{profile.AttributeStrength, cand.Concept, err.Error()})
		}
		return busEvents
	}

	for _, cand := range candidates {
		event, applyErr := h.applyStrength(ctx, cmd, cand, &pool, now)
		if applyErr != nil {
			logger.Error("strength candidate failed",
				slog.String("concept", cand.Concept), slog.Any("error", applyErr))
			result.Errors = append(result.Errors, CandidateError{profile.AttributeStrength, cand.Concept, applyErr.Error()})
			continue
		}
		if event == nil {
			continue
		}
		if event.PreviousState == nil {
			result.Created++
		} else {
			result.Updated++
		}
		busEvents = append(busEvents, profile.NewEntryChangedEvent(event, cand.Concept))
	}
	return busEvents
}

func (h *IngestReportHandler) applyStrength(
	ctx context.Context,
	cmd IngestReportCommand,
	cand extraction.StrengthCandidate,
	pool *[]*profile.Strength,
	now time.Time,
) (*profile.ChangeEvent, error) {
	match := h.matcher.FindStrength(cand.Concept, *pool)

	if match == nil {
		s, err := profile.NewStrength(profile.NewStrengthParams{
			ID:         h.newID(),
			StudentID:  cmd.StudentID,
			Concept:    cand.Concept,
			Category:   cand.Category,
			Level:      cand.Level,
			ReportID:   cmd.ReportID,
			DetectedAt: now,
		})
		if err != nil {
			h.logger.Debug("dropping malformed strength candidate",
				slog.String("concept", cand.Concept), slog.Any("error", err))
			return nil, nil
		}
		if err := h.write(ctx, func(ctx context.Context) error {
			return h.repo.CreateStrength(ctx, s)
		}); err != nil {
			return nil, err
		}
		*pool = append(*pool, s)
		return h.logChange(ctx, cmd, profile.ChangeStrengthAdded, profile.AttributeStrength, s.ID, nil, s.Snapshot(), now)
	}

	before := match.Snapshot()
	updated := match.Clone()
	changeType := updated.Confirm(cand.Level, cmd.ReportID, now)
	if err := h.write(ctx, func(ctx context.Context) error {
		return h.repo.UpdateStrength(ctx, updated)
	}); err != nil {
		return nil, err
	}
	*match = *updated
	return h.logChange(ctx, cmd, changeType, profile.AttributeStrength, updated.ID, before, updated.Snapshot(), now)
}

func (h *IngestReportHandler) processPatterns(
	ctx context.Context,
	cmd IngestReportCommand,
	candidates []extraction.PatternCandidate,
	now time.Time,
	result *IngestReportResult,
	busEvents []shared.Event,
	logger *slog.Logger,
) []shared.Event {
	if len(candidates) == 0 {
		return busEvents
	}

	pool, err := h.repo.ListPatterns(ctx, cmd.StudentID)
	if err != nil {
		for _, cand := range candidates {
			result.Errors = append(result.Errors, CandidateError{profile.AttributePattern, cand.Description, err.Error()})
		}
		return busEvents
	}

	for _, cand := range candidates {
		event, applyErr := h.applyPattern(ctx, cmd, cand, &pool, now)
		if applyErr != nil {
			logger.Error("pattern candidate failed",
				slog.String("description", cand.Description), slog.Any("error", applyErr))
			result.Errors = append(result.Errors, CandidateError{profile.AttributePattern, cand.Description, applyErr.Error()})
			continue
		}
		if event == nil {
			continue
		}
		if event.PreviousState == nil {
			result.Created++
		} else {
			result.Updated++
		}
		busEvents = append(busEvents, profile.NewEntryChangedEvent(event, cand.Description))
	}
	return busEvents
}

func (h *IngestReportHandler) applyPattern(
	ctx context.Context,
	cmd IngestReportCommand,
	cand extraction.PatternCandidate,
	pool *[]*profile.Pattern,
	now time.Time,
) (*profile.ChangeEvent, error) {
	match := h.matcher.FindPattern(cand.Type, cand.Description, *pool)

	if match == nil {
		p, err := profile.NewPattern(profile.NewPatternParams{
			ID:          h.newID(),
			StudentID:   cmd.StudentID,
			Type:        cand.Type,
			Description: cand.Description,
			IsPositive:  cand.IsPositive,
			Frequency:   cand.Frequency,
			ReportID:    cmd.ReportID,
			DetectedAt:  now,
		})
		if err != nil {
			h.logger.Debug("dropping malformed pattern candidate",
				slog.String("description", cand.Description), slog.Any("error", err))
			return nil, nil
		}
		if err := h.write(ctx, func(ctx context.Context) error {
			return h.repo.CreatePattern(ctx, p)
		}); err != nil {
			return nil, err
		}
		*pool = append(*pool, p)
		return h.logChange(ctx, cmd, profile.ChangePatternAdded, profile.AttributePattern, p.ID, nil, p.Snapshot(), now)
	}

	before := match.Snapshot()
	updated := match.Clone()
	changeType := updated.Observe(cand.Frequency, cmd.ReportID, now)
	if err := h.write(ctx, func(ctx context.Context) error {
		return h.repo.UpdatePattern(ctx, updated)
	}); err != nil {
		return nil, err
	}
	*match = *updated
	return h.logChange(ctx, cmd, changeType, profile.AttributePattern, updated.ID, before, updated.Snapshot(), now)
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence helpers
// ─────────────────────────────────────────────────────────────────────────────

// write runs a repository write with bounded retries.
func (h *IngestReportHandler) write(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, h.retry, fn)
}

// logChange appends the immutable change record for one mutation.
// The entry itself is already persisted at this point: an append failure is
// reported to the caller but does not roll the mutation back.
func (h *IngestReportHandler) logChange(
	ctx context.Context,
	cmd IngestReportCommand,
	changeType profile.ChangeType,
	attributeType profile.AttributeType,
	attributeID string,
	previous, next map[string]interface{},
	now time.Time,
) (*profile.ChangeEvent, error) {
	event, err := profile.NewChangeEvent(profile.NewChangeEventParams{
		ID:            h.newID(),
		StudentID:     cmd.StudentID,
		ReportID:      cmd.ReportID,
		ChangeType:    changeType,
		AttributeType: attributeType,
		AttributeID:   attributeID,
		PreviousState: previous,
		NewState:      next,
		ChangedBy:     profile.ActorAI,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, err
	}
	if err := h.write(ctx, func(ctx context.Context) error {
		return h.changes.Append(ctx, event)
	}); err != nil {
		return nil, err
	}
	return event, nil
}

// publish sends profile events to the bus; delivery failures are logged only.
func (h *IngestReportHandler) publish(
	ctx context.Context,
	cmd IngestReportCommand,
	result IngestReportResult,
	busEvents []shared.Event,
	logger *slog.Logger,
) {
	if h.bus == nil {
		return
	}
	busEvents = append(busEvents, profile.NewReportIngestedEvent(
		cmd.StudentID, cmd.ReportID, string(cmd.Kind), result.Applied(), len(result.Errors)))
	for _, event := range busEvents {
		if err := h.bus.Publish(ctx, event); err != nil {
			logger.Warn("event publish failed",
				slog.String("event_type", string(event.EventType())), slog.Any("error", err))
		}
	}
}
