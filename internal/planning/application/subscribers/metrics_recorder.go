package subscribers

import (
	"context"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/planline/pkg/observability"
)

// MetricsRecorder counts planning events as they are dispatched.
type MetricsRecorder struct {
	metrics observability.Metrics
}

// NewMetricsRecorder creates a new MetricsRecorder.
func NewMetricsRecorder(metrics observability.Metrics) *MetricsRecorder {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &MetricsRecorder{metrics: metrics}
}

// EventTypes returns the routing keys this consumer handles.
func (m *MetricsRecorder) EventTypes() []string {
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

// Handle increments the counter for the event's routing key.
func (m *MetricsRecorder) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case domain.RoutingKeyTaskAdded:
		m.metrics.Counter(observability.MetricTasksAdded, 1)
	case domain.RoutingKeyTaskMoved:
		m.metrics.Counter(observability.MetricTasksMoved, 1)
	case domain.RoutingKeyTaskRemoved:
		m.metrics.Counter(observability.MetricTasksRemoved, 1)
	case domain.RoutingKeyTasksLinked:
		m.metrics.Counter(observability.MetricTasksLinked, 1)
	case domain.RoutingKeyScheduleRealigned:
		m.metrics.Counter(observability.MetricSchedulesRealigned, 1)
	}
	m.metrics.Counter(observability.MetricEventsConsumed, 1,
		observability.T("routing_key", event.RoutingKey))
	return nil
}
