package commands

import (
	"context"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// UnlinkTaskCommand contains the data needed to take a task out of its group.
type UnlinkTaskCommand struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	TaskID    uuid.UUID
}

// UnlinkTaskHandler handles the UnlinkTaskCommand.
type UnlinkTaskHandler struct {
	scheduleRepo domain.ScheduleRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewUnlinkTaskHandler creates a new UnlinkTaskHandler.
func NewUnlinkTaskHandler(scheduleRepo domain.ScheduleRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UnlinkTaskHandler {
	return &UnlinkTaskHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the UnlinkTaskCommand.
func (h *UnlinkTaskHandler) Handle(ctx context.Context, cmd UnlinkTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.scheduleRepo.FindByProject(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}

		schedule.UnlinkTask(cmd.TaskID)

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, schedule, cmd.ActorID)
	})
}
