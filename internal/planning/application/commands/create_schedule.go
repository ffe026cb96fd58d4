package commands

import (
	"context"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CreateScheduleCommand contains the data needed to open a schedule for a project.
type CreateScheduleCommand struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
}

// CreateScheduleHandler handles the CreateScheduleCommand.
type CreateScheduleHandler struct {
	scheduleRepo domain.ScheduleRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCreateScheduleHandler creates a new CreateScheduleHandler.
func NewCreateScheduleHandler(scheduleRepo domain.ScheduleRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateScheduleHandler {
	return &CreateScheduleHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the CreateScheduleCommand.
func (h *CreateScheduleHandler) Handle(ctx context.Context, cmd CreateScheduleCommand) (uuid.UUID, error) {
	var scheduleID uuid.UUID
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.scheduleRepo.FindByProject(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrScheduleExists
		}

		schedule := domain.NewSchedule(cmd.ProjectID)
		scheduleID = schedule.ID()

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, schedule, cmd.ActorID)
	})
	return scheduleID, err
}
