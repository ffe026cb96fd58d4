package subscribers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/felixgeelhaar/planline/internal/planning/application/queries"
	"github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// CacheInvalidator drops the cached schedule read model whenever a planning
// event changes the underlying schedule.
type CacheInvalidator struct {
	cache  queries.ScheduleCache
	logger *slog.Logger
}

// NewCacheInvalidator creates a new CacheInvalidator.
func NewCacheInvalidator(cache queries.ScheduleCache, logger *slog.Logger) *CacheInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the routing keys this consumer handles.
func (c *CacheInvalidator) EventTypes() []string {
	return []string{
		domain.RoutingKeyTaskAdded,
		domain.RoutingKeyTaskDateChanged,
		domain.RoutingKeyTaskMoved,
		domain.RoutingKeyTasksLinked,
		domain.RoutingKeyTaskUnlinked,
		domain.RoutingKeyTaskRemoved,
		domain.RoutingKeyScheduleRealigned,
	}
}

// Handle invalidates the cache entry for the event's project.
func (c *CacheInvalidator) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload struct {
		ProjectID uuid.UUID `json:"project_id"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		c.logger.Warn("cache invalidator received malformed payload",
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return nil
	}
	if payload.ProjectID == uuid.Nil {
		return nil
	}

	if err := c.cache.Invalidate(ctx, payload.ProjectID); err != nil {
		c.logger.Warn("failed to invalidate schedule cache",
			"project_id", payload.ProjectID,
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return err
	}

	c.logger.Debug("schedule cache invalidated",
		"project_id", payload.ProjectID,
		"routing_key", event.RoutingKey,
	)
	return nil
}
