package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"quizzy-service/internal/domain"
)

// ProfileCache keeps the advisory per-user profile in a Redis hash:
//
//	HSET profile:{ownerID} name {name} totalQuizzes {n} bestScore {n}
//
// It is a latency shortcut only. Reads treat any error as a miss and
// writes are best-effort; the record set stays the source of truth.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func (c *ProfileCache) ReadCached(ctx context.Context, ownerID string) (domain.Profile, bool, error) {
	fields, err := c.client.HGetAll(ctx, c.key(ownerID)).Result()
	if err != nil {
		return domain.Profile{}, false, err
	}
	if len(fields) == 0 {
		return domain.Profile{}, false, nil
	}
	profile := domain.Profile{Name: fields["name"]}
	if n, err := strconv.Atoi(fields["totalQuizzes"]); err == nil {
		profile.TotalQuizzes = n
	}
	if n, err := strconv.Atoi(fields["bestScore"]); err == nil {
		profile.BestScore = n
	}
	return profile, true, nil
}

func (c *ProfileCache) WriteCached(ctx context.Context, ownerID string, profile domain.Profile) error {
	key := c.key(ownerID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key,
		"name", profile.Name,
		"totalQuizzes", profile.TotalQuizzes,
		"bestScore", profile.BestScore,
	)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *ProfileCache) key(ownerID string) string {
	return "profile:" + ownerID
}
