package application

import (
	"github.com/felixgeelhaar/planline/internal/shared/domain"
	"github.com/google/uuid"
)

// NewEventMetadata creates command-scoped metadata for domain events.
// Every event staged by one command shares the same correlation id.
func NewEventMetadata(actorID uuid.UUID) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: uuid.New(),
		CausationID:   uuid.New(),
		ActorID:       actorID,
	}
}
