package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ChangeTaskDateCommand contains the data needed to set a task's date.
type ChangeTaskDateCommand struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	TaskID    uuid.UUID
	NewDate   time.Time
}

// ChangeTaskDateHandler handles the ChangeTaskDateCommand.
type ChangeTaskDateHandler struct {
	scheduleRepo domain.ScheduleRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewChangeTaskDateHandler creates a new ChangeTaskDateHandler.
func NewChangeTaskDateHandler(scheduleRepo domain.ScheduleRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ChangeTaskDateHandler {
	return &ChangeTaskDateHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the ChangeTaskDateCommand.
func (h *ChangeTaskDateHandler) Handle(ctx context.Context, cmd ChangeTaskDateCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.scheduleRepo.FindByProject(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}

		schedule.ChangeTaskDate(cmd.TaskID, cmd.NewDate)

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, schedule, cmd.ActorID)
	})
}
