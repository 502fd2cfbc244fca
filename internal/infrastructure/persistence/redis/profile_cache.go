package redis

import (
	"context"
	"time"

	"github.com/sooam-edu/tutoring-hub/internal/domain/profile"
)

// ProfileCache implements profile.Cache using the generic Redis Cache.
type ProfileCache struct {
	cache *Cache
}

// NewProfileCache creates a new ProfileCache.
func NewProfileCache(cache *Cache) *ProfileCache {
	return &ProfileCache{
		cache: cache,
	}
}

// GetSnapshot returns the cached profile snapshot for a student.
// Returns ErrCacheMiss when no snapshot is cached.
func (c *ProfileCache) GetSnapshot(ctx context.Context, studentID string) (*profile.Snapshot, error) {
	var snapshot profile.Snapshot
	if err := c.cache.Get(ctx, ProfileKey(studentID), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// SetSnapshot stores a profile snapshot with the given TTL.
func (c *ProfileCache) SetSnapshot(ctx context.Context, snapshot *profile.Snapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	return c.cache.Set(ctx, ProfileKey(snapshot.StudentID), snapshot, ttl)
}

// Invalidate drops the cached snapshot after a profile mutation.
func (c *ProfileCache) Invalidate(ctx context.Context, studentID string) error {
	return c.cache.Delete(ctx, ProfileKey(studentID), HistoryKey(studentID))
}
