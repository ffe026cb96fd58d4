package domain

import (
	"errors"
	"sort"
	"time"

	sharedDomain "github.com/felixgeelhaar/planline/internal/shared/domain"
	"github.com/google/uuid"
)

var ErrTaskNotFound = errors.New("task not found")

// Schedule is the ordered list of tasks for one project. It owns the
// date-derivation rules: sequential tasks follow their predecessor by one
// business day, linked groups share a single date, and the first task is
// never dependent. Mutations that reference an unknown task id are silent
// no-ops; a stale id from the client is indistinguishable from a late
// event and must not fail the whole edit.
type Schedule struct {
	sharedDomain.BaseAggregateRoot
	projectID uuid.UUID
	tasks     []*Task
}

// NewSchedule creates an empty schedule for a project.
func NewSchedule(projectID uuid.UUID) *Schedule {
	return &Schedule{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		projectID:         projectID,
		tasks:             make([]*Task, 0),
	}
}

// Getters
func (s *Schedule) ProjectID() uuid.UUID { return s.projectID }
func (s *Schedule) Tasks() []*Task       { return s.tasks }

// Task returns the task with the given id.
func (s *Schedule) Task(taskID uuid.UUID) (*Task, error) {
	task, _, ok := s.findTask(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// AddTask appends a task to the end of the schedule. Dependent tasks get
// their date derived from the current last task immediately.
func (s *Schedule) AddTask(title, trade string, date time.Time, dependent bool) (*Task, error) {
	position := len(s.tasks)
	if position == 0 {
		dependent = false
	}

	task, err := NewTask(title, trade, date, position, dependent)
	if err != nil {
		return nil, err
	}

	s.tasks = append(s.tasks, task)
	s.realignFrom(position)
	s.Touch()

	s.AddDomainEvent(NewTaskAdded(s.ID(), s.projectID, task))
	return task, nil
}

// ChangeTaskDate sets a task's date by hand. The new date is pushed to the
// task's linked group, then every dependent task after it is realigned.
// Tasks before the changed one, outside its group, are never modified.
func (s *Schedule) ChangeTaskDate(taskID uuid.UUID, newDate time.Time) {
	task, index, ok := s.findTask(taskID)
	if !ok {
		return
	}

	newDate = DateOnly(newDate)
	oldDate := task.Date()
	task.setDate(newDate)

	if group, linked := task.Derivation().Group(); linked {
		s.propagateGroupDate(group, newDate)
	}

	s.realignFrom(index + 1)
	s.Touch()

	s.AddDomainEvent(NewTaskDateChanged(s.ID(), s.projectID, task, oldDate, newDate))
}

// MoveTask removes a task from its position and reinserts it at newIndex,
// renumbering densely and realigning the whole schedule. A move can change
// which task is first and which task precedes which, so nothing short of a
// full walk is safe.
func (s *Schedule) MoveTask(taskID uuid.UUID, newIndex int) {
	task, index, ok := s.findTask(taskID)
	if !ok {
		return
	}

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(s.tasks)-1 {
		newIndex = len(s.tasks) - 1
	}
	if newIndex == index {
		return
	}

	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.tasks = append(s.tasks[:newIndex], append([]*Task{task}, s.tasks[newIndex:]...)...)

	s.renumber()
	s.realignFrom(0)
	s.Touch()

	s.AddDomainEvent(NewTaskMoved(s.ID(), s.projectID, task, index, newIndex))
}

// LinkTasks puts the named tasks into one linked group sharing targetDate.
// Pass uuid.Nil as groupID to have one generated. Fewer than two resolvable
// ids is a no-op; a group of one is meaningless. Linking does not realign
// other tasks, but later edits respect the group.
func (s *Schedule) LinkTasks(taskIDs []uuid.UUID, targetDate time.Time, groupID uuid.UUID) uuid.UUID {
	members := make([]*Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		if task, _, ok := s.findTask(id); ok {
			members = append(members, task)
		}
	}
	if len(members) < 2 {
		return uuid.Nil
	}

	if groupID == uuid.Nil {
		groupID = uuid.New()
	}

	targetDate = DateOnly(targetDate)
	memberIDs := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		member.setDerivation(LinkedDerivation(groupID))
		member.setDate(targetDate)
		memberIDs = append(memberIDs, member.ID())
	}
	s.Touch()

	s.AddDomainEvent(NewTasksLinked(s.ID(), s.projectID, groupID, memberIDs, targetDate))
	return groupID
}

// UnlinkTask removes a task from its linked group and restores the default
// chained behavior. Former group members are left untouched.
func (s *Schedule) UnlinkTask(taskID uuid.UUID) {
	task, index, ok := s.findTask(taskID)
	if !ok {
		return
	}
	group, linked := task.Derivation().Group()
	if !linked {
		return
	}

	if index == 0 {
		task.setDerivation(ManualDerivation())
	} else {
		task.setDerivation(SequentialDerivation())
	}
	s.realignFrom(index)
	s.Touch()

	s.AddDomainEvent(NewTaskUnlinked(s.ID(), s.projectID, task, group))
}

// RemoveTask deletes a task, repairs its linked group, renumbers the
// remaining tasks densely and realigns the schedule.
func (s *Schedule) RemoveTask(taskID uuid.UUID) {
	task, index, ok := s.findTask(taskID)
	if !ok {
		return
	}

	// Group bookkeeping happens before the removal so the dependency the
	// deleted task carried is not lost.
	if group, linked := task.Derivation().Group(); linked {
		s.repairGroup(group, task)
	}

	s.tasks = append(s.tasks[:index], s.tasks[index+1:]...)
	s.renumber()
	s.realignFrom(0)
	s.Touch()

	s.AddDomainEvent(NewTaskRemoved(s.ID(), s.projectID, task))
}

// Realign re-derives every dependent and linked date in the schedule.
// Running it on an already consistent schedule changes nothing.
func (s *Schedule) Realign() {
	changed := s.realignFrom(0)
	if changed == 0 {
		return
	}
	s.Touch()
	s.AddDomainEvent(NewScheduleRealigned(s.ID(), s.projectID, changed))
}

// RealignAfter re-derives dates only for tasks ordered after the pivot.
func (s *Schedule) RealignAfter(pivotID uuid.UUID) {
	_, index, ok := s.findTask(pivotID)
	if !ok {
		return
	}
	changed := s.realignFrom(index + 1)
	if changed == 0 {
		return
	}
	s.Touch()
	s.AddDomainEvent(NewScheduleRealigned(s.ID(), s.projectID, changed))
}

// GroupMembers returns the tasks sharing a linked group, in order.
func (s *Schedule) GroupMembers(group uuid.UUID) []*Task {
	members := make([]*Task, 0, 2)
	for _, task := range s.tasks {
		if task.Derivation().InGroup(group) {
			members = append(members, task)
		}
	}
	return members
}

// GroupAnchorDate returns the effective date of a linked group: the latest
// date among its members.
func (s *Schedule) GroupAnchorDate(group uuid.UUID) time.Time {
	var anchor time.Time
	for _, member := range s.GroupMembers(group) {
		if member.Date().After(anchor) {
			anchor = member.Date()
		}
	}
	return anchor
}

// repairGroup fixes the linked group the removed task leaves behind.
func (s *Schedule) repairGroup(group uuid.UUID, removed *Task) {
	survivors := make([]*Task, 0, 2)
	for _, member := range s.GroupMembers(group) {
		if member.ID() != removed.ID() {
			survivors = append(survivors, member)
		}
	}

	if len(survivors) <= 1 {
		// A group of one is dissolved. The survivor inherits the chain
		// dependency if either of the pair carried it.
		for _, survivor := range survivors {
			if removed.DependsOnPrevious() || survivor.DependsOnPrevious() {
				survivor.setDerivation(SequentialDerivation())
			} else {
				survivor.setDerivation(ManualDerivation())
			}
		}
		return
	}

	// The group stays alive. If the removed member fed the group's date
	// from the chain, the earliest survivor takes over.
	if removed.DependsOnPrevious() {
		first := survivors[0]
		for _, survivor := range survivors[1:] {
			if survivor.Position() < first.Position() {
				first = survivor
			}
		}
		first.setDerivation(ChainedLinkedDerivation(group))
	}
}

// realignFrom walks the schedule in position order starting at index start
// and re-derives every dependent date, returning how many tasks changed.
// The walk always corrects the first task first: a reorder may have put a
// chained task at position zero, where there is no predecessor to follow.
func (s *Schedule) realignFrom(start int) int {
	if len(s.tasks) == 0 {
		return 0
	}

	changed := 0

	first := s.tasks[0]
	if first.DependsOnPrevious() {
		if group, linked := first.Derivation().Group(); linked {
			first.setDerivation(LinkedDerivation(group))
		} else {
			first.setDerivation(ManualDerivation())
		}
		changed++
	}

	if start < 1 {
		start = 1
	}
	for i := start; i < len(s.tasks); i++ {
		task := s.tasks[i]
		if !task.DependsOnPrevious() {
			continue
		}

		prev := s.tasks[i-1]
		anchor := prev.Date()
		if group, linked := prev.Derivation().Group(); linked {
			anchor = s.GroupAnchorDate(group)
		}

		derived := NextBusinessDay(anchor)
		if !derived.Equal(task.Date()) {
			task.setDate(derived)
			changed++
		}
		if group, linked := task.Derivation().Group(); linked {
			changed += s.propagateGroupDate(group, task.Date())
		}
	}

	return changed
}

// propagateGroupDate pushes date onto every member of a group, wherever
// they sit in the order. Returns the number of members that moved.
func (s *Schedule) propagateGroupDate(group uuid.UUID, date time.Time) int {
	date = DateOnly(date)
	moved := 0
	for _, member := range s.GroupMembers(group) {
		if !member.Date().Equal(date) {
			member.setDate(date)
			moved++
		}
	}
	return moved
}

// renumber reassigns positions densely as the current list index.
func (s *Schedule) renumber() {
	for i, task := range s.tasks {
		task.setPosition(i)
	}
}

func (s *Schedule) findTask(taskID uuid.UUID) (*Task, int, bool) {
	for i, task := range s.tasks {
		if task.ID() == taskID {
			return task, i, true
		}
	}
	return nil, 0, false
}

func (s *Schedule) sortTasks() {
	sort.Slice(s.tasks, func(i, j int) bool {
		return s.tasks[i].Position() < s.tasks[j].Position()
	})
}

// RehydrateSchedule recreates a schedule from persisted state.
func RehydrateSchedule(
	id uuid.UUID,
	projectID uuid.UUID,
	tasks []*Task,
	createdAt, updatedAt time.Time,
) *Schedule {
	baseEntity := sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)

	s := &Schedule{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(baseEntity),
		projectID:         projectID,
		tasks:             tasks,
	}
	s.sortTasks()
	return s
}
