package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/planline/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Schedule"

	RoutingKeyTaskAdded         = "planning.task.added"
	RoutingKeyTaskDateChanged   = "planning.task.date_changed"
	RoutingKeyTaskMoved         = "planning.task.moved"
	RoutingKeyTasksLinked       = "planning.task.linked"
	RoutingKeyTaskUnlinked      = "planning.task.unlinked"
	RoutingKeyTaskRemoved       = "planning.task.removed"
	RoutingKeyScheduleRealigned = "planning.schedule.realigned"
)

// TaskAdded is emitted when a task is appended to the schedule.
type TaskAdded struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Title     string    `json:"title"`
	Trade     string    `json:"trade"`
	Date      time.Time `json:"date"`
	Position  int       `json:"position"`
}

// NewTaskAdded creates a TaskAdded event.
func NewTaskAdded(scheduleID, projectID uuid.UUID, task *Task) TaskAdded {
	return TaskAdded{
		BaseEvent: sharedDomain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyTaskAdded),
		ProjectID: projectID,
		TaskID:    task.ID(),
		Title:     task.Title(),
		Trade:     task.Trade(),
		Date:      task.Date(),
		Position:  task.Position(),
	}
}

// TaskDateChanged is emitted when a task's date is set by hand.
type TaskDateChanged struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	OldDate   time.Time `json:"old_date"`
	NewDate   time.Time `json:"new_date"`
}

// NewTaskDateChanged creates a TaskDateChanged event.
func NewTaskDateChanged(scheduleID, projectID uuid.UUID, task *Task, oldDate, newDate time.Time) TaskDateChanged {
	return TaskDateChanged{
		BaseEvent: sharedDomain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyTaskDateChanged),
		ProjectID: projectID,
		TaskID:    task.ID(),
		OldDate:   oldDate,
		NewDate:   newDate,
	}
}

// TaskMoved is emitted when a task is reordered.
type TaskMoved struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	OldIndex  int       `json:"old_index"`
	NewIndex  int       `json:"new_index"`
}

// NewTaskMoved creates a TaskMoved event.
func NewTaskMoved(scheduleID, projectID uuid.UUID, task *Task, oldIndex, newIndex int) TaskMoved {
	return TaskMoved{
		BaseEvent: sharedDomain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyTaskMoved),
		ProjectID: projectID,
		TaskID:    task.ID(),
		OldIndex:  oldIndex,
		NewIndex:  newIndex,
	}
}

// TasksLinked is emitted when tasks are joined into a linked group.
type TasksLinked struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID   `json:"project_id"`
	GroupID   uuid.UUID   `json:"group_id"`
	TaskIDs   []uuid.UUID `json:"task_ids"`
	Date      time.Time   `json:"date"`
}

// NewTasksLinked creates a TasksLinked event.
func NewTasksLinked(scheduleID, projectID, groupID uuid.UUID, taskIDs []uuid.UUID, date time.Time) TasksLinked {
	return TasksLinked{
		BaseEvent: sharedDomain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyTasksLinked),
		ProjectID: projectID,
		GroupID:   groupID,
		TaskIDs:   taskIDs,
		Date:      date,
	}
}

// TaskUnlinked is emitted when a task leaves its linked group.
type TaskUnlinked struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	GroupID   uuid.UUID `json:"group_id"`
}

// NewTaskUnlinked creates a TaskUnlinked event.
func NewTaskUnlinked(scheduleID, projectID uuid.UUID, task *Task, groupID uuid.UUID) TaskUnlinked {
	return TaskUnlinked{
		BaseEvent: sharedDomain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyTaskUnlinked),
		ProjectID: projectID,
		TaskID:    task.ID(),
		GroupID:   groupID,
	}
}

// TaskRemoved is emitted when a task is deleted from the schedule.
type TaskRemoved struct {
	sharedDomain.BaseEvent
	ProjectID uuid.UUID `json:"project_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Title     string    `json:"title"`
}

// NewTaskRemoved creates a TaskRemoved event.
func NewTaskRemoved(scheduleID, projectID uuid.UUID, task *Task) TaskRemoved {
	return TaskRemoved{
		BaseEvent: sharedDomain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyTaskRemoved),
		ProjectID: projectID,
		TaskID:    task.ID(),
		Title:     task.Title(),
	}
}

// ScheduleRealigned is emitted when a standalone realignment shifted dates.
type ScheduleRealigned struct {
	sharedDomain.BaseEvent
	ProjectID    uuid.UUID `json:"project_id"`
	TasksShifted int       `json:"tasks_shifted"`
}

// NewScheduleRealigned creates a ScheduleRealigned event.
func NewScheduleRealigned(scheduleID, projectID uuid.UUID, tasksShifted int) ScheduleRealigned {
	return ScheduleRealigned{
		BaseEvent:    sharedDomain.NewBaseEvent(scheduleID, AggregateType, RoutingKeyScheduleRealigned),
		ProjectID:    projectID,
		TasksShifted: tasksShifted,
	}
}
