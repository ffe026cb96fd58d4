package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openScheduleDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

var monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func TestSQLiteScheduleRepository_SaveAndFind(t *testing.T) {
	repo := NewSQLiteScheduleRepository(openScheduleDB(t))
	ctx := context.Background()

	projectID := uuid.New()
	schedule := domain.NewSchedule(projectID)
	first, err := schedule.AddTask("excavation", "earthworks", monday, false)
	require.NoError(t, err)
	_, err = schedule.AddTask("foundation", "concrete", monday, true)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, schedule))

	loaded, err := repo.FindByProject(ctx, projectID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, schedule.ID(), loaded.ID())
	assert.Equal(t, projectID, loaded.ProjectID())

	tasks := loaded.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, first.ID(), tasks[0].ID())
	assert.Equal(t, "excavation", tasks[0].Title())
	assert.Equal(t, "earthworks", tasks[0].Trade())
	assert.Equal(t, monday, tasks[0].Date())
	assert.Equal(t, domain.DerivationManual, tasks[0].Derivation().Kind())
	assert.Equal(t, monday.AddDate(0, 0, 1), tasks[1].Date())
	assert.Equal(t, domain.DerivationSequential, tasks[1].Derivation().Kind())
}

func TestSQLiteScheduleRepository_RoundTripsLinkedGroups(t *testing.T) {
	repo := NewSQLiteScheduleRepository(openScheduleDB(t))
	ctx := context.Background()

	schedule := domain.NewSchedule(uuid.New())
	a, err := schedule.AddTask("electrical rough-in", "electrical", monday, false)
	require.NoError(t, err)
	b, err := schedule.AddTask("plumbing rough-in", "plumbing", monday, true)
	require.NoError(t, err)

	group := schedule.LinkTasks([]uuid.UUID{a.ID(), b.ID()}, monday, uuid.Nil)
	require.NotEqual(t, uuid.Nil, group)

	require.NoError(t, repo.Save(ctx, schedule))

	loaded, err := repo.FindByID(ctx, schedule.ID())
	require.NoError(t, err)
	require.NotNil(t, loaded)

	members := loaded.GroupMembers(group)
	require.Len(t, members, 2)
	for _, member := range members {
		got, ok := member.Derivation().Group()
		require.True(t, ok)
		assert.Equal(t, group, got)
	}
}

func TestSQLiteScheduleRepository_SaveReplacesRemovedTasks(t *testing.T) {
	repo := NewSQLiteScheduleRepository(openScheduleDB(t))
	ctx := context.Background()

	schedule := domain.NewSchedule(uuid.New())
	_, err := schedule.AddTask("framing", "carpentry", monday, false)
	require.NoError(t, err)
	second, err := schedule.AddTask("roofing", "carpentry", monday, true)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, schedule))

	schedule.RemoveTask(second.ID())
	require.NoError(t, repo.Save(ctx, schedule))

	loaded, err := repo.FindByID(ctx, schedule.ID())
	require.NoError(t, err)
	require.Len(t, loaded.Tasks(), 1)
	assert.Equal(t, "framing", loaded.Tasks()[0].Title())
}

func TestSQLiteScheduleRepository_FindMissingReturnsNil(t *testing.T) {
	repo := NewSQLiteScheduleRepository(openScheduleDB(t))
	ctx := context.Background()

	loaded, err := repo.FindByProject(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)

	loaded, err = repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteScheduleRepository_Delete(t *testing.T) {
	db := openScheduleDB(t)
	repo := NewSQLiteScheduleRepository(db)
	ctx := context.Background()

	schedule := domain.NewSchedule(uuid.New())
	_, err := schedule.AddTask("drywall", "finishing", monday, false)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, schedule))

	require.NoError(t, repo.Delete(ctx, schedule.ID()))

	loaded, err := repo.FindByID(ctx, schedule.ID())
	require.NoError(t, err)
	assert.Nil(t, loaded)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&count))
	assert.Zero(t, count)
}
