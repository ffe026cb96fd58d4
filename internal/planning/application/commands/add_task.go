package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// AddTaskCommand contains the data needed to append a task to a schedule.
type AddTaskCommand struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	Title     string
	Trade     string
	Date      time.Time
	Dependent bool
}

// AddTaskHandler handles the AddTaskCommand.
type AddTaskHandler struct {
	scheduleRepo domain.ScheduleRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewAddTaskHandler creates a new AddTaskHandler.
func NewAddTaskHandler(scheduleRepo domain.ScheduleRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *AddTaskHandler {
	return &AddTaskHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the AddTaskCommand and returns the new task's id.
func (h *AddTaskHandler) Handle(ctx context.Context, cmd AddTaskCommand) (uuid.UUID, error) {
	var taskID uuid.UUID
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.scheduleRepo.FindByProject(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}

		task, err := schedule.AddTask(cmd.Title, cmd.Trade, cmd.Date, cmd.Dependent)
		if err != nil {
			return err
		}
		taskID = task.ID()

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, schedule, cmd.ActorID)
	})
	return taskID, err
}
