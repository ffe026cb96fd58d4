package commands

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleExists   = errors.New("schedule already exists for project")
)

// stageEvents drains the schedule's domain events into the outbox within
// the current transaction.
func stageEvents(ctx context.Context, outboxRepo outbox.Repository, schedule *domain.Schedule, actorID uuid.UUID) error {
	events := schedule.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	metadata := sharedApplication.NewEventMetadata(actorID)

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event, metadata)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := outboxRepo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	schedule.ClearDomainEvents()
	return nil
}
