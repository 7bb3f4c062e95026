package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"group_chat/internal/domain"
	"group_chat/pkg/logger"
)

const (
	rateLimitKeyPrefix = "ratelimit:"
	rateLimitPerWindow = 100
	rateLimitWindow    = time.Minute
)

// RateLimitRepository meters request bursts per client over a fixed
// redis-backed window.
type RateLimitRepository interface {
	Allow(ctx context.Context, clientIP string) (*domain.RateLimitDecision, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

// Allow counts the request and reports whether it fits the window. The
// counter key expires with the window, so idle clients cost nothing.
func (r *rateLimitRepository) Allow(ctx context.Context, clientIP string) (*domain.RateLimitDecision, error) {
	key := rateLimitKeyPrefix + clientIP

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		r.log.Error("Failed to count request", "error", err)
		return nil, err
	}
	if count == 1 {
		r.redis.Expire(ctx, key, rateLimitWindow)
	}

	remaining := rateLimitPerWindow - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &domain.RateLimitDecision{
		Allowed:   count <= rateLimitPerWindow,
		Limit:     rateLimitPerWindow,
		Remaining: remaining,
	}, nil
}
