package commands

import (
	"context"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// MoveTaskCommand contains the data needed to reorder a task.
type MoveTaskCommand struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	TaskID    uuid.UUID
	NewIndex  int
}

// MoveTaskHandler handles the MoveTaskCommand.
type MoveTaskHandler struct {
	scheduleRepo domain.ScheduleRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewMoveTaskHandler creates a new MoveTaskHandler.
func NewMoveTaskHandler(scheduleRepo domain.ScheduleRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *MoveTaskHandler {
	return &MoveTaskHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the MoveTaskCommand.
func (h *MoveTaskHandler) Handle(ctx context.Context, cmd MoveTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.scheduleRepo.FindByProject(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}

		schedule.MoveTask(cmd.TaskID, cmd.NewIndex)

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, schedule, cmd.ActorID)
	})
}
