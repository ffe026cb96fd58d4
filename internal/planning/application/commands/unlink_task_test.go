package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnlinkTaskHandler_Handle(t *testing.T) {
	t.Run("removes task from its group", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := passthroughUnitOfWork()

		projectID := uuid.New()
		schedule := scheduleWithTasks(t, projectID, 3)
		first := schedule.Tasks()[0]
		second := schedule.Tasks()[1]
		third := schedule.Tasks()[2]
		schedule.LinkTasks([]uuid.UUID{first.ID(), second.ID(), third.ID()}, monday, uuid.Nil)
		schedule.ClearDomainEvents()

		scheduleRepo.On("FindByProject", mock.Anything, projectID).Return(schedule, nil)
		scheduleRepo.On("Save", mock.Anything, schedule).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		handler := NewUnlinkTaskHandler(scheduleRepo, outboxRepo, uow)
		err := handler.Handle(context.Background(), UnlinkTaskCommand{
			ProjectID: projectID,
			ActorID:   uuid.New(),
			TaskID:    second.ID(),
		})

		require.NoError(t, err)
		_, linked := second.Derivation().Group()
		assert.False(t, linked)
		_, linked = first.Derivation().Group()
		assert.True(t, linked, "remaining members keep their group")

		scheduleRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("unknown task id is a tolerated no-op", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := passthroughUnitOfWork()

		projectID := uuid.New()
		schedule := scheduleWithTasks(t, projectID, 1)

		scheduleRepo.On("FindByProject", mock.Anything, projectID).Return(schedule, nil)
		scheduleRepo.On("Save", mock.Anything, schedule).Return(nil)

		handler := NewUnlinkTaskHandler(scheduleRepo, outboxRepo, uow)
		err := handler.Handle(context.Background(), UnlinkTaskCommand{
			ProjectID: projectID,
			TaskID:    uuid.New(),
		})

		require.NoError(t, err)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("fails when schedule is missing", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := rollbackUnitOfWork()

		scheduleRepo.On("FindByProject", mock.Anything, mock.Anything).Return(nil, nil)

		handler := NewUnlinkTaskHandler(scheduleRepo, outboxRepo, uow)
		err := handler.Handle(context.Background(), UnlinkTaskCommand{
			ProjectID: uuid.New(),
			TaskID:    uuid.New(),
		})

		assert.ErrorIs(t, err, ErrScheduleNotFound)
		uow.AssertExpectations(t)
	})
}
