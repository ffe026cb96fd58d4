package subscribers

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/planline/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecorder_CountsTaskEvents(t *testing.T) {
	metrics := observability.NewInMemoryMetrics()
	recorder := NewMetricsRecorder(metrics)

	events := []string{
		domain.RoutingKeyTaskAdded,
		domain.RoutingKeyTaskAdded,
		domain.RoutingKeyTaskMoved,
		domain.RoutingKeyTaskRemoved,
		domain.RoutingKeyScheduleRealigned,
	}
	for _, key := range events {
		err := recorder.Handle(context.Background(), &eventbus.ConsumedEvent{RoutingKey: key})
		require.NoError(t, err)
	}

	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricTasksAdded))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricTasksMoved))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricTasksRemoved))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricSchedulesRealigned))
	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricEventsConsumed,
		observability.T("routing_key", domain.RoutingKeyTaskAdded)))
}

func TestMetricsRecorder_CoversAllPlanningEvents(t *testing.T) {
	recorder := NewMetricsRecorder(nil)

	assert.ElementsMatch(t, NewCacheInvalidator(&spyCache{}, nil).EventTypes(), recorder.EventTypes())
}
