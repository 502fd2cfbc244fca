package command

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory collaborators for command handler tests.
// ─────────────────────────────────────────────────────────────────────────────

type fakeRepository struct {
	weaknesses []*profile.Weakness
	strengths  []*profile.Strength
	patterns   []*profile.Pattern

	// failCreateWeaknessConcept makes CreateWeakness fail for one concept.
	failCreateWeaknessConcept string
	failListWeaknesses        error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{}
}

func (r *fakeRepository) CreateWeakness(_ context.Context, w *profile.Weakness) error {
	if r.failCreateWeaknessConcept != "" && w.Concept == r.failCreateWeaknessConcept {
		return errors.New("storage unavailable")
	}
	for _, existing := range r.weaknesses {
		if existing.ID == w.ID {
			return shared.ErrAlreadyExists
		}
	}
	r.weaknesses = append(r.weaknesses, w.Clone())
	return nil
}

func (r *fakeRepository) UpdateWeakness(_ context.Context, w *profile.Weakness) error {
	for i, existing := range r.weaknesses {
		if existing.ID == w.ID {
			r.weaknesses[i] = w.Clone()
			return nil
		}
	}
	return profile.ErrEntryNotFound
}

func (r *fakeRepository) ListWeaknesses(_ context.Context, studentID string) ([]*profile.Weakness, error) {
	if r.failListWeaknesses != nil {
		return nil, r.failListWeaknesses
	}
	var out []*profile.Weakness
	for _, w := range r.weaknesses {
		if w.StudentID == studentID {
			out = append(out, w.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepository) ActiveWeaknesses(ctx context.Context, studentID string) ([]*profile.Weakness, error) {
	all, err := r.ListWeaknesses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var out []*profile.Weakness
	for _, w := range all {
		if w.Status.IsConcern() {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].OccurrenceCount > out[j].OccurrenceCount
	})
	return out, nil
}

func (r *fakeRepository) ResolveWeakness(_ context.Context, id string, resolvedAt time.Time) (*profile.Weakness, error) {
	for _, w := range r.weaknesses {
		if w.ID == id {
			if err := w.Resolve(resolvedAt); err != nil {
				return nil, err
			}
			return w.Clone(), nil
		}
	}
	return nil, profile.ErrEntryNotFound
}

func (r *fakeRepository) CreateStrength(_ context.Context, s *profile.Strength) error {
	r.strengths = append(r.strengths, s.Clone())
	return nil
}

func (r *fakeRepository) UpdateStrength(_ context.Context, s *profile.Strength) error {
	for i, existing := range r.strengths {
		if existing.ID == s.ID {
			r.strengths[i] = s.Clone()
			return nil
		}
	}
	return profile.ErrEntryNotFound
}

func (r *fakeRepository) ListStrengths(_ context.Context, studentID string) ([]*profile.Strength, error) {
	var out []*profile.Strength
	for _, s := range r.strengths {
		if s.StudentID == studentID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepository) ActiveStrengths(ctx context.Context, studentID string) ([]*profile.Strength, error) {
	all, err := r.ListStrengths(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var out []*profile.Strength
	for _, s := range all {
		if s.Status == profile.EntryActive {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].ConfirmationCount > out[j].ConfirmationCount
	})
	return out, nil
}

func (r *fakeRepository) CreatePattern(_ context.Context, p *profile.Pattern) error {
	r.patterns = append(r.patterns, p.Clone())
	return nil
}

func (r *fakeRepository) UpdatePattern(_ context.Context, p *profile.Pattern) error {
	for i, existing := range r.patterns {
		if existing.ID == p.ID {
			r.patterns[i] = p.Clone()
			return nil
		}
	}
	return profile.ErrEntryNotFound
}

func (r *fakeRepository) ListPatterns(_ context.Context, studentID string) ([]*profile.Pattern, error) {
	var out []*profile.Pattern
	for _, p := range r.patterns {
		if p.StudentID == studentID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepository) ActivePatterns(ctx context.Context, studentID string) ([]*profile.Pattern, error) {
	all, err := r.ListPatterns(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var out []*profile.Pattern
	for _, p := range all {
		if p.Status == profile.EntryActive {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurrenceCount > out[j].OccurrenceCount
	})
	return out, nil
}

type fakeChangeLog struct {
	events    []*profile.ChangeEvent
	appendErr error
}

func (l *fakeChangeLog) Append(_ context.Context, event *profile.ChangeEvent) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.events = append(l.events, event)
	return nil
}

func (l *fakeChangeLog) ListByStudent(_ context.Context, studentID string, limit int) ([]*profile.ChangeEvent, error) {
	var out []*profile.ChangeEvent
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].StudentID != studentID {
			continue
		}
		out = append(out, l.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (l *fakeChangeLog) ListByReport(_ context.Context, reportID string) ([]*profile.ChangeEvent, error) {
	var out []*profile.ChangeEvent
	for _, e := range l.events {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBus struct {
	published []shared.Event
}

func (b *fakeBus) Publish(_ context.Context, event shared.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *fakeBus) Subscribe(shared.EventType, shared.EventHandler) {}

func (b *fakeBus) Close() error { return nil }

type fakeCache struct {
	invalidated []string
}

var errCacheMiss = errors.New("cache miss")

func (c *fakeCache) GetSnapshot(context.Context, string) (*profile.Snapshot, error) {
	return nil, errCacheMiss
}

func (c *fakeCache) SetSnapshot(context.Context, *profile.Snapshot, time.Duration) error {
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, studentID string) error {
	c.invalidated = append(c.invalidated, studentID)
	return nil
}
