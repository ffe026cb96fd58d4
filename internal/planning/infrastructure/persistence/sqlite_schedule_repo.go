package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	sharedPersistence "github.com/felixgeelhaar/planline/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// SQLiteScheduleRepository implements domain.ScheduleRepository using SQLite.
type SQLiteScheduleRepository struct {
	db *sql.DB
}

// NewSQLiteScheduleRepository creates a new SQLite schedule repository.
func NewSQLiteScheduleRepository(db *sql.DB) *SQLiteScheduleRepository {
	return &SQLiteScheduleRepository{db: db}
}

// Save persists the schedule and all its tasks. Tasks are replaced
// wholesale, which keeps positions and derivations consistent without
// diffing against the stored rows.
func (r *SQLiteScheduleRepository) Save(ctx context.Context, schedule *domain.Schedule) error {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return r.save(ctx, info.Tx, schedule)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.save(ctx, tx, schedule); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteScheduleRepository) save(ctx context.Context, execer sharedPersistence.SQLiteExecutor, schedule *domain.Schedule) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO schedules (id, project_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`,
		schedule.ID().String(),
		schedule.ProjectID().String(),
		schedule.CreatedAt().UTC().Format(time.RFC3339Nano),
		schedule.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	if _, err := execer.ExecContext(ctx, `DELETE FROM tasks WHERE schedule_id = ?`, schedule.ID().String()); err != nil {
		return err
	}

	for _, task := range schedule.Tasks() {
		derivation := task.Derivation()
		var groupID any
		if group, ok := derivation.Group(); ok {
			groupID = group.String()
		}

		_, err := execer.ExecContext(ctx, `
			INSERT INTO tasks (
				id, schedule_id, title, trade, date, position,
				derivation_kind, group_id, chained, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			task.ID().String(),
			schedule.ID().String(),
			task.Title(),
			task.Trade(),
			task.Date().Format(dateLayout),
			task.Position(),
			string(derivation.Kind()),
			groupID,
			derivation.Chained(),
			task.CreatedAt().UTC().Format(time.RFC3339Nano),
			task.UpdatedAt().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// FindByID loads a schedule by its id. Returns (nil, nil) when not found.
func (r *SQLiteScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	return r.findOne(ctx, `SELECT id, project_id, created_at, updated_at FROM schedules WHERE id = ?`, id.String())
}

// FindByProject loads the schedule for a project. Returns (nil, nil) when not found.
func (r *SQLiteScheduleRepository) FindByProject(ctx context.Context, projectID uuid.UUID) (*domain.Schedule, error) {
	return r.findOne(ctx, `SELECT id, project_id, created_at, updated_at FROM schedules WHERE project_id = ?`, projectID.String())
}

func (r *SQLiteScheduleRepository) findOne(ctx context.Context, query string, arg any) (*domain.Schedule, error) {
	execer := sharedPersistence.SQLiteQuerier(ctx, r.db)

	var (
		idStr        string
		projectIDStr string
		createdAtStr string
		updatedAtStr string
	)
	err := execer.QueryRowContext(ctx, query, arg).Scan(&idStr, &projectIDStr, &createdAtStr, &updatedAtStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return nil, err
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, createdAtStr)
	updatedAt, _ := time.Parse(time.RFC3339Nano, updatedAtStr)

	tasks, err := r.loadTasks(ctx, execer, idStr)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSchedule(id, projectID, tasks, createdAt, updatedAt), nil
}

func (r *SQLiteScheduleRepository) loadTasks(ctx context.Context, execer sharedPersistence.SQLiteExecutor, scheduleID string) ([]*domain.Task, error) {
	rows, err := execer.QueryContext(ctx, `
		SELECT id, title, trade, date, position, derivation_kind, group_id, chained, created_at, updated_at
		FROM tasks
		WHERE schedule_id = ?
		ORDER BY position
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var (
			idStr        string
			title        string
			trade        string
			dateStr      string
			position     int
			kindStr      string
			groupIDStr   sql.NullString
			chained      bool
			createdAtStr string
			updatedAtStr string
		)
		err := rows.Scan(&idStr, &title, &trade, &dateStr, &position, &kindStr, &groupIDStr, &chained, &createdAtStr, &updatedAtStr)
		if err != nil {
			return nil, err
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, err
		}

		groupID := uuid.Nil
		if groupIDStr.Valid {
			groupID, err = uuid.Parse(groupIDStr.String)
			if err != nil {
				return nil, err
			}
		}
		derivation, err := domain.NewDerivation(domain.DerivationKind(kindStr), groupID, chained)
		if err != nil {
			return nil, err
		}

		createdAt, _ := time.Parse(time.RFC3339Nano, createdAtStr)
		updatedAt, _ := time.Parse(time.RFC3339Nano, updatedAtStr)

		tasks = append(tasks, domain.RehydrateTask(id, title, trade, date, position, derivation, createdAt, updatedAt))
	}
	return tasks, rows.Err()
}

// Delete removes a schedule and its tasks.
func (r *SQLiteScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	execer := sharedPersistence.SQLiteQuerier(ctx, r.db)
	if _, err := execer.ExecContext(ctx, `DELETE FROM tasks WHERE schedule_id = ?`, id.String()); err != nil {
		return err
	}
	_, err := execer.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id.String())
	return err
}
