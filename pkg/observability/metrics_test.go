package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}

	// Should not panic
	m.Counter(MetricTasksAdded, 1)
	m.Gauge("outbox.lag", 1.0)
	m.Histogram("batch.size", 1.0)
	m.Timing(MetricOperationDuration, time.Second)
}

func TestInMemoryMetrics(t *testing.T) {
	t.Run("counters accumulate", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricTasksAdded, 1)
		m.Counter(MetricTasksAdded, 2)

		assert.Equal(t, int64(3), m.GetCounter(MetricTasksAdded))
	})

	t.Run("tags separate series", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricEventsConsumed, 1, T("routing_key", "planning.task.added"))
		m.Counter(MetricEventsConsumed, 1, T("routing_key", "planning.task.moved"))
		m.Counter(MetricEventsConsumed, 1, T("routing_key", "planning.task.added"))

		assert.Equal(t, int64(2), m.GetCounter(MetricEventsConsumed, T("routing_key", "planning.task.added")))
		assert.Equal(t, int64(1), m.GetCounter(MetricEventsConsumed, T("routing_key", "planning.task.moved")))
	})

	t.Run("gauges overwrite", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Gauge("outbox.lag", 25.5)
		m.Gauge("outbox.lag", 3.0)

		assert.Equal(t, 3.0, m.GetGauge("outbox.lag"))
	})

	t.Run("histograms and timings append", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Histogram("batch.size", 10)
		m.Histogram("batch.size", 100)
		m.Timing(MetricOperationDuration, 100*time.Millisecond)
		m.Timing(MetricOperationDuration, 200*time.Millisecond)

		assert.Equal(t, []float64{10, 100}, m.GetHistogram("batch.size"))
		assert.Len(t, m.GetTimings(MetricOperationDuration), 2)
	})

	t.Run("reset clears everything", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricTasksAdded, 1)
		m.Gauge("outbox.lag", 1.0)
		m.Histogram("batch.size", 1.0)
		m.Timing(MetricOperationDuration, time.Second)

		m.Reset()

		assert.Equal(t, int64(0), m.GetCounter(MetricTasksAdded))
		assert.Equal(t, 0.0, m.GetGauge("outbox.lag"))
		assert.Empty(t, m.GetHistogram("batch.size"))
		assert.Empty(t, m.GetTimings(MetricOperationDuration))
	})
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "planline.tasks.added", formatKey(MetricTasksAdded, nil))
	assert.Equal(t, "x:a=1", formatKey("x", []Tag{T("a", "1")}))
	assert.Equal(t, "x:a=1:b=2", formatKey("x", []Tag{T("a", "1"), T("b", "2")}))
}
