package domain

import (
	"context"

	"github.com/google/uuid"
)

// ScheduleRepository persists schedules. Find methods return (nil, nil)
// when no schedule matches.
type ScheduleRepository interface {
	Save(ctx context.Context, schedule *Schedule) error
	FindByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	FindByProject(ctx context.Context, projectID uuid.UUID) (*Schedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
