package outbox

import (
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/planline/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	domain.BaseEvent
	Detail string `json:"detail"`
}

func TestNewMessage(t *testing.T) {
	aggregateID := uuid.New()
	event := &stubEvent{
		BaseEvent: domain.NewBaseEvent(aggregateID, "Schedule", "planning.task.added"),
		Detail:    "pour foundation",
	}
	meta := domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		ActorID:       uuid.New(),
	}

	msg, err := NewMessage(event, meta)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, "Schedule", msg.AggregateType)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "planning.task.added", msg.RoutingKey)
	assert.Equal(t, "planning.task.added", msg.EventType)
	assert.JSONEq(t, `{"detail":"pour foundation"}`, string(msg.Payload))
	assert.False(t, msg.IsPublished())

	var stored domain.EventMetadata
	require.NoError(t, json.Unmarshal(msg.Metadata, &stored))
	assert.Equal(t, meta, stored)
}

func TestMessage_CanRetry(t *testing.T) {
	msg := &Message{RetryCount: 2}
	assert.True(t, msg.CanRetry(3))
	assert.False(t, msg.CanRetry(2))
}
