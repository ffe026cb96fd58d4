package persistence

import (
	"context"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/felixgeelhaar/planline/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/planline/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresScheduleRepository implements domain.ScheduleRepository using PostgreSQL.
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleRepository creates a new PostgreSQL schedule repository.
func NewPostgresScheduleRepository(pool *pgxpool.Pool) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{pool: pool}
}

// Save persists the schedule and all its tasks by replacing the task rows.
func (r *PostgresScheduleRepository) Save(ctx context.Context, schedule *domain.Schedule) error {
	if _, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return r.save(ctx, schedule)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	txCtx := sharedPersistence.WithTx(ctx, tx, true)
	if err := r.save(txCtx, schedule); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresScheduleRepository) save(ctx context.Context, schedule *domain.Schedule) error {
	execer := sharedPersistence.Executor(ctx, r.pool)

	_, err := execer.Exec(ctx, `
		INSERT INTO schedules (id, project_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`,
		schedule.ID(),
		schedule.ProjectID(),
		schedule.CreatedAt(),
		schedule.UpdatedAt(),
	)
	if err != nil {
		return err
	}

	if _, err := execer.Exec(ctx, `DELETE FROM tasks WHERE schedule_id = $1`, schedule.ID()); err != nil {
		return err
	}

	for _, task := range schedule.Tasks() {
		derivation := task.Derivation()
		var groupID *uuid.UUID
		if group, ok := derivation.Group(); ok {
			groupID = &group
		}

		_, err := execer.Exec(ctx, `
			INSERT INTO tasks (
				id, schedule_id, title, trade, date, position,
				derivation_kind, group_id, chained, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			task.ID(),
			schedule.ID(),
			task.Title(),
			task.Trade(),
			task.Date(),
			task.Position(),
			string(derivation.Kind()),
			groupID,
			derivation.Chained(),
			task.CreatedAt(),
			task.UpdatedAt(),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// FindByID loads a schedule by its id. Returns (nil, nil) when not found.
func (r *PostgresScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	return r.findOne(ctx, `SELECT id, project_id, created_at, updated_at FROM schedules WHERE id = $1`, id)
}

// FindByProject loads the schedule for a project. Returns (nil, nil) when not found.
func (r *PostgresScheduleRepository) FindByProject(ctx context.Context, projectID uuid.UUID) (*domain.Schedule, error) {
	return r.findOne(ctx, `SELECT id, project_id, created_at, updated_at FROM schedules WHERE project_id = $1`, projectID)
}

func (r *PostgresScheduleRepository) findOne(ctx context.Context, query string, arg any) (*domain.Schedule, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)

	var (
		id        uuid.UUID
		projectID uuid.UUID
		createdAt time.Time
		updatedAt time.Time
	)
	err := execer.QueryRow(ctx, query, arg).Scan(&id, &projectID, &createdAt, &updatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tasks, err := r.loadTasks(ctx, id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSchedule(id, projectID, tasks, createdAt, updatedAt), nil
}

func (r *PostgresScheduleRepository) loadTasks(ctx context.Context, scheduleID uuid.UUID) ([]*domain.Task, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, `
		SELECT id, title, trade, date, position, derivation_kind, group_id, chained, created_at, updated_at
		FROM tasks
		WHERE schedule_id = $1
		ORDER BY position
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var (
			id        uuid.UUID
			title     string
			trade     string
			date      time.Time
			position  int
			kindStr   string
			groupID   *uuid.UUID
			chained   bool
			createdAt time.Time
			updatedAt time.Time
		)
		err := rows.Scan(&id, &title, &trade, &date, &position, &kindStr, &groupID, &chained, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		group := uuid.Nil
		if groupID != nil {
			group = *groupID
		}
		derivation, err := domain.NewDerivation(domain.DerivationKind(kindStr), group, chained)
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, domain.RehydrateTask(id, title, trade, date, position, derivation, createdAt, updatedAt))
	}
	return tasks, rows.Err()
}

// Delete removes a schedule and its tasks.
func (r *PostgresScheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	execer := sharedPersistence.Executor(ctx, r.pool)
	if _, err := execer.Exec(ctx, `DELETE FROM tasks WHERE schedule_id = $1`, id); err != nil {
		return err
	}
	_, err := execer.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	return err
}
