package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/planline/internal/shared/application"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// LinkTasksCommand contains the data needed to join tasks into a linked group.
// GroupID may be uuid.Nil to have one generated.
type LinkTasksCommand struct {
	ProjectID  uuid.UUID
	ActorID    uuid.UUID
	TaskIDs    []uuid.UUID
	TargetDate time.Time
	GroupID    uuid.UUID
}

// LinkTasksHandler handles the LinkTasksCommand.
type LinkTasksHandler struct {
	scheduleRepo domain.ScheduleRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewLinkTasksHandler creates a new LinkTasksHandler.
func NewLinkTasksHandler(scheduleRepo domain.ScheduleRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *LinkTasksHandler {
	return &LinkTasksHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the LinkTasksCommand and returns the group id, which is
// uuid.Nil when fewer than two tasks could be linked.
func (h *LinkTasksHandler) Handle(ctx context.Context, cmd LinkTasksCommand) (uuid.UUID, error) {
	var groupID uuid.UUID
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := h.scheduleRepo.FindByProject(txCtx, cmd.ProjectID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return ErrScheduleNotFound
		}

		groupID = schedule.LinkTasks(cmd.TaskIDs, cmd.TargetDate, cmd.GroupID)

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, schedule, cmd.ActorID)
	})
	return groupID, err
}
