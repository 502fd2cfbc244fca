package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
	"github.com/sooam-edu/tutoring-hub/internal/domain/shared"
)

// stubRepo serves only the read methods the query handlers call; the
// embedded interface panics on anything else.
type stubRepo struct {
	profile.Repository

	weaknesses []*profile.Weakness
	strengths  []*profile.Strength
	patterns   []*profile.Pattern
	err        error
}

func (r *stubRepo) ActiveWeaknesses(context.Context, string) ([]*profile.Weakness, error) {
	return r.weaknesses, r.err
}

func (r *stubRepo) ActiveStrengths(context.Context, string) ([]*profile.Strength, error) {
	return r.strengths, r.err
}

func (r *stubRepo) ActivePatterns(context.Context, string) ([]*profile.Pattern, error) {
	return r.patterns, r.err
}

type stubCache struct {
	snapshot *profile.Snapshot
	sets     int
}

var errMiss = errors.New("cache miss")

func (c *stubCache) GetSnapshot(context.Context, string) (*profile.Snapshot, error) {
	if c.snapshot == nil {
		return nil, errMiss
	}
	return c.snapshot, nil
}

func (c *stubCache) SetSnapshot(_ context.Context, snapshot *profile.Snapshot, _ time.Duration) error {
	c.snapshot = snapshot
	c.sets++
	return nil
}

func (c *stubCache) Invalidate(context.Context, string) error {
	c.snapshot = nil
	return nil
}

func activeWeakness(t *testing.T) *profile.Weakness {
	t.Helper()
	w, err := profile.NewWeakness(profile.NewWeaknessParams{
		ID:        "w-1",
		StudentID: "student-1",
		Concept:   "분수 나눗셈",
		Category:  profile.WeaknessConcept,
		Severity:  4,
		ReportID:  "report-1",
	})
	require.NoError(t, err)
	return w
}

func TestGetProfile_BuildsSnapshotFromRepository(t *testing.T) {
	repo := &stubRepo{weaknesses: []*profile.Weakness{activeWeakness(t)}}
	h := NewGetProfileHandler(repo, nil, nil)

	snapshot, err := h.Handle(context.Background(), "student-1")

	require.NoError(t, err)
	assert.Equal(t, "student-1", snapshot.StudentID)
	require.Len(t, snapshot.Weaknesses, 1)
	assert.Empty(t, snapshot.Strengths)
	assert.False(t, snapshot.BuiltAt.IsZero())
}

func TestGetProfile_CacheHitSkipsRepository(t *testing.T) {
	cached := &profile.Snapshot{StudentID: "student-1", BuiltAt: time.Now().UTC()}
	cache := &stubCache{snapshot: cached}
	repo := &stubRepo{err: errors.New("repository must not be hit")}
	h := NewGetProfileHandler(repo, cache, nil)

	snapshot, err := h.Handle(context.Background(), "student-1")

	require.NoError(t, err)
	assert.Same(t, cached, snapshot)
}

func TestGetProfile_CacheMissFillsCache(t *testing.T) {
	cache := &stubCache{}
	repo := &stubRepo{weaknesses: []*profile.Weakness{activeWeakness(t)}}
	h := NewGetProfileHandler(repo, cache, nil)

	snapshot, err := h.Handle(context.Background(), "student-1")

	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
	assert.Same(t, snapshot, cache.snapshot)
}

func TestGetProfile_Validation(t *testing.T) {
	h := NewGetProfileHandler(&stubRepo{}, nil, nil)

	_, err := h.Handle(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestGetProfile_RepositoryError(t *testing.T) {
	sentinel := errors.New("connection reset")
	h := NewGetProfileHandler(&stubRepo{err: sentinel}, nil, nil)

	_, err := h.Handle(context.Background(), "student-1")
	assert.ErrorIs(t, err, sentinel)
}

type stubChangeLog struct {
	gotLimit int
	events   []*profile.ChangeEvent
}

func (l *stubChangeLog) Append(context.Context, *profile.ChangeEvent) error { return nil }

func (l *stubChangeLog) ListByStudent(_ context.Context, _ string, limit int) ([]*profile.ChangeEvent, error) {
	l.gotLimit = limit
	return l.events, nil
}

func (l *stubChangeLog) ListByReport(context.Context, string) ([]*profile.ChangeEvent, error) {
	return nil, nil
}

func TestGetChangeHistory_LimitDefaults(t *testing.T) {
	log := &stubChangeLog{}
	h := NewGetChangeHistoryHandler(log)
	ctx := context.Background()

	_, err := h.Handle(ctx, "student-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, log.gotLimit)

	_, err = h.Handle(ctx, "student-1", 500)
	require.NoError(t, err)
	assert.Equal(t, 50, log.gotLimit)

	_, err = h.Handle(ctx, "student-1", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, log.gotLimit)
}

func TestGetChangeHistory_Validation(t *testing.T) {
	h := NewGetChangeHistoryHandler(&stubChangeLog{})

	_, err := h.Handle(context.Background(), "", 10)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
