package outbox

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openOutboxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE outbox (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			routing_key TEXT NOT NULL,
			payload TEXT NOT NULL,
			metadata TEXT,
			created_at TEXT NOT NULL,
			published_at TEXT,
			next_retry_at TEXT,
			retry_count INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			dead_lettered_at TEXT,
			dead_letter_reason TEXT
		)
	`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_SaveAndGetUnpublished(t *testing.T) {
	repo := NewSQLiteRepository(openOutboxDB(t))
	ctx := context.Background()

	msg := stagedMessage("planning.task.added")
	require.NoError(t, repo.Save(ctx, msg))
	assert.NotZero(t, msg.ID)

	got, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, msg.EventID, got[0].EventID)
	assert.Equal(t, "planning.task.added", got[0].RoutingKey)
	assert.Equal(t, msg.AggregateID, got[0].AggregateID)
}

func TestSQLiteRepository_SaveBatchOrdering(t *testing.T) {
	repo := NewSQLiteRepository(openOutboxDB(t))
	ctx := context.Background()

	first := stagedMessage("planning.task.added")
	first.CreatedAt = time.Now().Add(-2 * time.Second)
	second := stagedMessage("planning.task.moved")
	second.CreatedAt = time.Now().Add(-1 * time.Second)
	require.NoError(t, repo.SaveBatch(ctx, []*Message{first, second}))

	got, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "planning.task.added", got[0].RoutingKey)
	assert.Equal(t, "planning.task.moved", got[1].RoutingKey)
}

func TestSQLiteRepository_MarkPublishedHidesMessage(t *testing.T) {
	repo := NewSQLiteRepository(openOutboxDB(t))
	ctx := context.Background()

	msg := stagedMessage("planning.task.linked")
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkPublished(ctx, msg.ID))

	got, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRepository_MarkFailedSchedulesRetry(t *testing.T) {
	repo := NewSQLiteRepository(openOutboxDB(t))
	ctx := context.Background()

	msg := stagedMessage("planning.task.unlinked")
	require.NoError(t, repo.Save(ctx, msg))

	// A future retry time keeps the message out of the unpublished batch.
	require.NoError(t, repo.MarkFailed(ctx, msg.ID, "broker down", time.Now().Add(time.Hour)))

	got, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	failed, err := repo.GetFailed(ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].RetryCount)
	require.NotNil(t, failed[0].LastError)
	assert.Equal(t, "broker down", *failed[0].LastError)
}

func TestSQLiteRepository_MarkDeadExcludesFromProcessing(t *testing.T) {
	repo := NewSQLiteRepository(openOutboxDB(t))
	ctx := context.Background()

	msg := stagedMessage("planning.task.removed")
	require.NoError(t, repo.Save(ctx, msg))
	require.NoError(t, repo.MarkDead(ctx, msg.ID, "gave up"))

	got, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRepository_DeleteOld(t *testing.T) {
	db := openOutboxDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	msg := stagedMessage("planning.schedule.realigned")
	require.NoError(t, repo.Save(ctx, msg))

	old := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC3339Nano)
	_, err := db.Exec(`UPDATE outbox SET published_at = ? WHERE id = ?`, old, msg.ID)
	require.NoError(t, err)

	deleted, err := repo.DeleteOld(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
