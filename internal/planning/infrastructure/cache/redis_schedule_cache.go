package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/application/queries"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// DefaultTTL is how long a cached schedule read model stays valid without
// an explicit invalidation.
const DefaultTTL = 15 * time.Minute

// RedisScheduleCache implements queries.ScheduleCache backed by Redis.
// All calls go through a circuit breaker so a flapping Redis degrades reads
// to the repository instead of stalling them.
type RedisScheduleCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisScheduleCache creates a new RedisScheduleCache.
func NewRedisScheduleCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisScheduleCache {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	settings := gobreaker.Settings{
		Name:    "schedule-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RedisScheduleCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		ttl:     ttl,
		logger:  logger,
	}
}

func scheduleKey(projectID uuid.UUID) string {
	return fmt.Sprintf("planline:schedule:project:%s", projectID)
}

// Get returns the cached schedule for a project, or nil on a miss.
func (c *RedisScheduleCache) Get(ctx context.Context, projectID uuid.UUID) (*queries.ScheduleDTO, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.client.Get(ctx, scheduleKey(projectID)).Bytes()
	})
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dto queries.ScheduleDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		// A corrupt entry behaves like a miss.
		c.logger.Warn("discarding malformed cache entry",
			"project_id", projectID,
			"error", err,
		)
		return nil, nil
	}
	return &dto, nil
}

// Set stores the schedule read model for a project.
func (c *RedisScheduleCache) Set(ctx context.Context, projectID uuid.UUID, schedule *queries.ScheduleDTO) error {
	data, err := json.Marshal(schedule)
	if err != nil {
		return err
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, scheduleKey(projectID), data, c.ttl).Err()
	})
	return err
}

// Invalidate drops the cached schedule for a project.
func (c *RedisScheduleCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, scheduleKey(projectID)).Err()
	})
	return err
}
