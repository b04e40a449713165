// Package cache provides the Redis-backed read-side cache for project
// snapshots. Keys follow darkroom:project:snapshot:{project_id}.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lenslate/darkroom/internal/workflow/domain"
)

// DefaultSnapshotTTL bounds staleness when an invalidation is lost.
const DefaultSnapshotTTL = 15 * time.Minute

// RedisSnapshotCache implements queries.SnapshotCache and
// commands.SnapshotInvalidator.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotCache creates a snapshot cache. A non-positive ttl falls
// back to DefaultSnapshotTTL.
func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(projectID uuid.UUID) string {
	return fmt.Sprintf("darkroom:project:snapshot:%s", projectID)
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *RedisSnapshotCache) Get(ctx context.Context, projectID uuid.UUID) (*domain.ProjectSnapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(projectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot domain.ProjectSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// A corrupt entry reads as a miss; the next Set overwrites it.
		return nil, nil
	}
	return &snapshot, nil
}

// Set stores the snapshot with the configured TTL.
func (c *RedisSnapshotCache) Set(ctx context.Context, snapshot *domain.ProjectSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(snapshot.ID), data, c.ttl).Err()
}

// Invalidate drops the cached snapshot.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	return c.client.Del(ctx, snapshotKey(projectID)).Err()
}
