package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainOf builds a schedule of n tasks where the first is dated firstDate
// and every later task follows its predecessor.
func chainOf(t *testing.T, n int, firstDate time.Time) *domain.Schedule {
	t.Helper()
	s := domain.NewSchedule(uuid.New())
	for i := 0; i < n; i++ {
		_, err := s.AddTask(fmt.Sprintf("Task %d", i+1), "", firstDate, i > 0)
		require.NoError(t, err)
	}
	s.ClearDomainEvents()
	return s
}

func rehydrated(tasks ...*domain.Task) *domain.Schedule {
	now := time.Now().UTC()
	return domain.RehydrateSchedule(uuid.New(), uuid.New(), tasks, now, now)
}

func taskAt(position int, date time.Time, d domain.Derivation) *domain.Task {
	now := time.Now().UTC()
	return domain.RehydrateTask(uuid.New(), fmt.Sprintf("Task %d", position+1), "", date, position, d, now, now)
}

// assertConsistent checks the schedule invariants: dense positions, an
// independent first task, one date per linked group.
func assertConsistent(t *testing.T, s *domain.Schedule) {
	t.Helper()
	groupDates := make(map[uuid.UUID]time.Time)
	for i, task := range s.Tasks() {
		assert.Equal(t, i, task.Position(), "positions must be dense")
		if i == 0 {
			assert.False(t, task.DependsOnPrevious(), "first task must not depend on a predecessor")
		}
		if group, ok := task.Derivation().Group(); ok {
			if seen, exists := groupDates[group]; exists {
				assert.Equal(t, seen, task.Date(), "linked group members must share one date")
			} else {
				groupDates[group] = task.Date()
			}
		}
	}
}

func TestSchedule_AddTask_DerivesChainDates(t *testing.T) {
	s := chainOf(t, 5, monday)

	// Five chained tasks starting on a Monday fill the work week.
	for i, task := range s.Tasks() {
		assert.Equal(t, monday.AddDate(0, 0, i), task.Date(), "task %d", i)
	}
	assertConsistent(t, s)
}

func TestSchedule_AddTask_FirstNeverDependent(t *testing.T) {
	s := domain.NewSchedule(uuid.New())
	task, err := s.AddTask("Task 1", "", monday, true)

	require.NoError(t, err)
	assert.False(t, task.DependsOnPrevious())
}

func TestSchedule_AddTask_SkipsWeekend(t *testing.T) {
	friday := monday.AddDate(0, 0, 4)
	s := domain.NewSchedule(uuid.New())
	_, err := s.AddTask("Task 1", "", friday, false)
	require.NoError(t, err)
	task, err := s.AddTask("Task 2", "", friday, true)
	require.NoError(t, err)

	// The successor of a Friday task lands on the following Monday.
	assert.Equal(t, monday.AddDate(0, 0, 7), task.Date())
}

func TestSchedule_AddTask_EmitsEvent(t *testing.T) {
	s := domain.NewSchedule(uuid.New())
	task, err := s.AddTask("Task 1", "excavation", monday, false)
	require.NoError(t, err)

	events := s.DomainEvents()
	require.Len(t, events, 1)
	event, ok := events[0].(domain.TaskAdded)
	require.True(t, ok)
	assert.Equal(t, s.ID(), event.AggregateID())
	assert.Equal(t, task.ID(), event.TaskID)
	assert.Equal(t, domain.RoutingKeyTaskAdded, event.RoutingKey())
}

func TestSchedule_ChangeTaskDate_ShiftsSuccessorsOnly(t *testing.T) {
	s := chainOf(t, 5, monday)
	third := s.Tasks()[2]
	nextMonday := monday.AddDate(0, 0, 7)

	s.ChangeTaskDate(third.ID(), nextMonday)

	tasks := s.Tasks()
	assert.Equal(t, monday, tasks[0].Date())
	assert.Equal(t, monday.AddDate(0, 0, 1), tasks[1].Date())
	assert.Equal(t, nextMonday, tasks[2].Date())
	assert.Equal(t, nextMonday.AddDate(0, 0, 1), tasks[3].Date())
	assert.Equal(t, nextMonday.AddDate(0, 0, 2), tasks[4].Date())
	assertConsistent(t, s)
}

func TestSchedule_ChangeTaskDate_UnknownIDIsNoop(t *testing.T) {
	s := chainOf(t, 3, monday)
	before := datesOf(s)

	s.ChangeTaskDate(uuid.New(), monday.AddDate(0, 0, 14))

	assert.Equal(t, before, datesOf(s))
	assert.Empty(t, s.DomainEvents())
}

func TestSchedule_ChangeTaskDate_PropagatesToLinkedGroup(t *testing.T) {
	s := domain.NewSchedule(uuid.New())
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		task, err := s.AddTask(fmt.Sprintf("Task %d", i+1), "", monday, false)
		require.NoError(t, err)
		ids = append(ids, task.ID())
	}
	s.LinkTasks(ids, monday, uuid.Nil)

	nextMonday := monday.AddDate(0, 0, 7)
	s.ChangeTaskDate(ids[0], nextMonday)

	for _, task := range s.Tasks() {
		assert.Equal(t, nextMonday, task.Date())
	}
	assertConsistent(t, s)
}

func TestSchedule_LinkTasks(t *testing.T) {
	s := chainOf(t, 4, monday)
	tasks := s.Tasks()
	ids := []uuid.UUID{tasks[1].ID(), tasks[2].ID()}
	target := monday.AddDate(0, 0, 7)

	group := s.LinkTasks(ids, target, uuid.Nil)

	require.NotEqual(t, uuid.Nil, group)
	for _, id := range ids {
		task, err := s.Task(id)
		require.NoError(t, err)
		assert.Equal(t, target, task.Date())
		assert.Equal(t, domain.DerivationLinked, task.Derivation().Kind())
		// Linked tasks take their date from the group, not the chain.
		assert.False(t, task.DependsOnPrevious())
	}
	assertConsistent(t, s)
}

func TestSchedule_LinkTasks_FewerThanTwoIsNoop(t *testing.T) {
	s := chainOf(t, 3, monday)
	before := datesOf(s)

	group := s.LinkTasks([]uuid.UUID{s.Tasks()[0].ID()}, monday.AddDate(0, 0, 7), uuid.Nil)

	assert.Equal(t, uuid.Nil, group)
	assert.Equal(t, before, datesOf(s))
	assert.Empty(t, s.DomainEvents())
}

func TestSchedule_LinkTasks_UnknownIDsDropped(t *testing.T) {
	s := chainOf(t, 3, monday)

	// Only one of the ids resolves, so the group is not formed.
	group := s.LinkTasks([]uuid.UUID{s.Tasks()[0].ID(), uuid.New()}, monday, uuid.Nil)

	assert.Equal(t, uuid.Nil, group)
}

func TestSchedule_LinkTasks_KeepsSuppliedGroupID(t *testing.T) {
	s := chainOf(t, 3, monday)
	supplied := uuid.New()
	tasks := s.Tasks()

	group := s.LinkTasks([]uuid.UUID{tasks[0].ID(), tasks[1].ID()}, monday, supplied)

	assert.Equal(t, supplied, group)
}

func TestSchedule_UnlinkTask(t *testing.T) {
	s := chainOf(t, 3, monday)
	tasks := s.Tasks()
	s.LinkTasks([]uuid.UUID{tasks[1].ID(), tasks[2].ID()}, monday.AddDate(0, 0, 7), uuid.Nil)

	s.UnlinkTask(tasks[1].ID())

	assert.Equal(t, domain.DerivationSequential, tasks[1].Derivation().Kind())
	// The former sibling keeps its membership; delete repairs groups, not unlink.
	assert.Equal(t, domain.DerivationLinked, tasks[2].Derivation().Kind())
	assertConsistent(t, s)
}

func TestSchedule_UnlinkTask_NotLinkedIsNoop(t *testing.T) {
	s := chainOf(t, 2, monday)
	s.UnlinkTask(s.Tasks()[1].ID())
	assert.Empty(t, s.DomainEvents())
}

func TestSchedule_MoveTask_PreservesManualDates(t *testing.T) {
	s := chainOf(t, 4, monday)
	manualDate := monday.AddDate(0, 0, 14)
	manual, err := s.AddTask("Inspection", "", manualDate, false)
	require.NoError(t, err)
	s.ClearDomainEvents()

	s.MoveTask(manual.ID(), 1)

	assert.Equal(t, 1, manual.Position())
	// A manually dated task keeps its date wherever it sits.
	assert.Equal(t, manualDate, manual.Date())
	assertConsistent(t, s)
}

func TestSchedule_MoveTask_RealignsChain(t *testing.T) {
	s := chainOf(t, 3, monday)
	tasks := s.Tasks()

	// Moving the chained last task to the front strips its dependency.
	moved := tasks[2]
	s.MoveTask(moved.ID(), 0)

	assert.Equal(t, 0, moved.Position())
	assert.False(t, moved.DependsOnPrevious())
	assertConsistent(t, s)

	// The rest of the chain follows the new head.
	ordered := s.Tasks()
	assert.Equal(t, domain.NextBusinessDay(ordered[0].Date()), ordered[1].Date())
	assert.Equal(t, domain.NextBusinessDay(ordered[1].Date()), ordered[2].Date())
}

func TestSchedule_MoveTask_UnknownIDIsNoop(t *testing.T) {
	s := chainOf(t, 3, monday)
	before := datesOf(s)

	s.MoveTask(uuid.New(), 0)

	assert.Equal(t, before, datesOf(s))
	assert.Empty(t, s.DomainEvents())
}

func TestSchedule_RemoveTask_DissolvesPairGroup(t *testing.T) {
	group := uuid.New()
	a := taskAt(0, monday, domain.ManualDerivation())
	b := taskAt(1, monday.AddDate(0, 0, 7), domain.ChainedLinkedDerivation(group))
	c := taskAt(2, monday.AddDate(0, 0, 7), domain.LinkedDerivation(group))
	s := rehydrated(a, b, c)

	s.RemoveTask(b.ID())

	// The survivor cannot stay in a group of one, and inherits the chain
	// dependency the removed member carried.
	_, linked := c.Derivation().Group()
	assert.False(t, linked)
	assert.Equal(t, domain.DerivationSequential, c.Derivation().Kind())
	assert.Len(t, s.Tasks(), 2)
	assertConsistent(t, s)
}

func TestSchedule_RemoveTask_DissolvedSurvivorStaysManual(t *testing.T) {
	group := uuid.New()
	a := taskAt(0, monday, domain.ManualDerivation())
	b := taskAt(1, monday.AddDate(0, 0, 7), domain.LinkedDerivation(group))
	c := taskAt(2, monday.AddDate(0, 0, 7), domain.LinkedDerivation(group))
	s := rehydrated(a, b, c)

	s.RemoveTask(b.ID())

	// Neither member depended on a predecessor, so the survivor is manual.
	assert.Equal(t, domain.DerivationManual, c.Derivation().Kind())
	assertConsistent(t, s)
}

func TestSchedule_RemoveTask_PromotesEarliestSurvivor(t *testing.T) {
	group := uuid.New()
	a := taskAt(0, monday, domain.ManualDerivation())
	b := taskAt(1, monday.AddDate(0, 0, 1), domain.ChainedLinkedDerivation(group))
	c := taskAt(2, monday.AddDate(0, 0, 1), domain.LinkedDerivation(group))
	d := taskAt(3, monday.AddDate(0, 0, 1), domain.LinkedDerivation(group))
	s := rehydrated(a, b, c, d)

	s.RemoveTask(b.ID())

	// The group survives with two members; the earliest one now carries
	// the chain dependency the removed member held.
	assert.True(t, c.Derivation().InGroup(group))
	assert.True(t, c.DependsOnPrevious())
	assert.True(t, d.Derivation().InGroup(group))
	assert.False(t, d.Derivation().Chained())
	assertConsistent(t, s)
}

func TestSchedule_RemoveTask_RenumbersDensely(t *testing.T) {
	s := chainOf(t, 4, monday)
	s.RemoveTask(s.Tasks()[1].ID())

	require.Len(t, s.Tasks(), 3)
	for i, task := range s.Tasks() {
		assert.Equal(t, i, task.Position())
	}
	assertConsistent(t, s)
}

func TestSchedule_RemoveTask_UnknownIDIsNoop(t *testing.T) {
	s := chainOf(t, 3, monday)

	s.RemoveTask(uuid.New())

	assert.Len(t, s.Tasks(), 3)
	assert.Empty(t, s.DomainEvents())
}

func TestSchedule_Realign_Idempotent(t *testing.T) {
	s := chainOf(t, 5, monday)
	s.Realign()
	first := datesOf(s)

	s.ClearDomainEvents()
	s.Realign()

	assert.Equal(t, first, datesOf(s))
	// A consistent schedule realigns to itself and emits nothing.
	assert.Empty(t, s.DomainEvents())
}

func TestSchedule_Realign_ForcesFirstTaskIndependent(t *testing.T) {
	a := taskAt(0, monday, domain.SequentialDerivation())
	b := taskAt(1, monday, domain.SequentialDerivation())
	s := rehydrated(a, b)

	s.Realign()

	assert.False(t, a.DependsOnPrevious())
	assert.Equal(t, monday, a.Date())
	assert.Equal(t, monday.AddDate(0, 0, 1), b.Date())
	assertConsistent(t, s)
}

func TestSchedule_Realign_UsesGroupAnchorDate(t *testing.T) {
	group := uuid.New()
	later := monday.AddDate(0, 0, 2)
	// The second group member is out of step; the group's anchor is its
	// latest member date, so the successor follows Wednesday, not Monday.
	a := taskAt(0, monday, domain.LinkedDerivation(group))
	b := taskAt(1, later, domain.LinkedDerivation(group))
	c := taskAt(2, monday, domain.SequentialDerivation())
	s := rehydrated(a, b, c)

	s.Realign()

	assert.Equal(t, later.AddDate(0, 0, 1), c.Date())
}

func TestSchedule_RealignAfter_LeavesPivotAndEarlierAlone(t *testing.T) {
	s := chainOf(t, 4, monday)
	tasks := s.Tasks()

	// Corrupt a date after the pivot; targeted realignment repairs it.
	s.ChangeTaskDate(tasks[3].ID(), monday.AddDate(0, 0, 21))
	s.ClearDomainEvents()
	s.RealignAfter(tasks[1].ID())

	assert.Equal(t, monday, tasks[0].Date())
	assert.Equal(t, monday.AddDate(0, 0, 1), tasks[1].Date())
	assert.Equal(t, monday.AddDate(0, 0, 2), tasks[2].Date())
	assert.Equal(t, monday.AddDate(0, 0, 3), tasks[3].Date())
}

func TestSchedule_RealignAfter_UnknownPivotIsNoop(t *testing.T) {
	a := taskAt(0, monday, domain.ManualDerivation())
	b := taskAt(1, monday, domain.SequentialDerivation())
	s := rehydrated(a, b)

	s.RealignAfter(uuid.New())

	// The stale date stays; nothing after an unknown pivot is walked.
	assert.Equal(t, monday, b.Date())
	assert.Empty(t, s.DomainEvents())
}

func TestSchedule_GroupAnchorDate(t *testing.T) {
	group := uuid.New()
	a := taskAt(0, monday, domain.LinkedDerivation(group))
	b := taskAt(1, monday.AddDate(0, 0, 3), domain.LinkedDerivation(group))
	s := rehydrated(a, b)

	assert.Equal(t, monday.AddDate(0, 0, 3), s.GroupAnchorDate(group))
}

func TestRehydrateSchedule_SortsByPosition(t *testing.T) {
	a := taskAt(2, monday, domain.ManualDerivation())
	b := taskAt(0, monday, domain.ManualDerivation())
	c := taskAt(1, monday, domain.ManualDerivation())
	s := rehydrated(a, b, c)

	tasks := s.Tasks()
	assert.Equal(t, 0, tasks[0].Position())
	assert.Equal(t, 1, tasks[1].Position())
	assert.Equal(t, 2, tasks[2].Position())
}

func datesOf(s *domain.Schedule) []time.Time {
	dates := make([]time.Time, 0, len(s.Tasks()))
	for _, task := range s.Tasks() {
		dates = append(dates, task.Date())
	}
	return dates
}
