package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRemoveTaskHandler_Handle(t *testing.T) {
	t.Run("deletes task and renumbers", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := passthroughUnitOfWork()

		projectID := uuid.New()
		schedule := scheduleWithTasks(t, projectID, 3)
		second := schedule.Tasks()[1]

		scheduleRepo.On("FindByProject", mock.Anything, projectID).Return(schedule, nil)
		scheduleRepo.On("Save", mock.Anything, schedule).Return(nil)
		outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)

		handler := NewRemoveTaskHandler(scheduleRepo, outboxRepo, uow)
		err := handler.Handle(context.Background(), RemoveTaskCommand{
			ProjectID: projectID,
			ActorID:   uuid.New(),
			TaskID:    second.ID(),
		})

		require.NoError(t, err)
		require.Len(t, schedule.Tasks(), 2)
		for i, task := range schedule.Tasks() {
			assert.Equal(t, i, task.Position())
			assert.NotEqual(t, second.ID(), task.ID())
		}

		scheduleRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("unknown task id is a tolerated no-op", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := passthroughUnitOfWork()

		projectID := uuid.New()
		schedule := scheduleWithTasks(t, projectID, 2)

		scheduleRepo.On("FindByProject", mock.Anything, projectID).Return(schedule, nil)
		scheduleRepo.On("Save", mock.Anything, schedule).Return(nil)

		handler := NewRemoveTaskHandler(scheduleRepo, outboxRepo, uow)
		err := handler.Handle(context.Background(), RemoveTaskCommand{
			ProjectID: projectID,
			TaskID:    uuid.New(),
		})

		require.NoError(t, err)
		assert.Len(t, schedule.Tasks(), 2)
		outboxRepo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("fails when schedule is missing", func(t *testing.T) {
		scheduleRepo := new(mockScheduleRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := rollbackUnitOfWork()

		scheduleRepo.On("FindByProject", mock.Anything, mock.Anything).Return(nil, nil)

		handler := NewRemoveTaskHandler(scheduleRepo, outboxRepo, uow)
		err := handler.Handle(context.Background(), RemoveTaskCommand{
			ProjectID: uuid.New(),
			TaskID:    uuid.New(),
		})

		assert.ErrorIs(t, err, ErrScheduleNotFound)
		uow.AssertExpectations(t)
	})
}
