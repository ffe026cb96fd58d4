package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/planline/internal/planning/domain"
	"github.com/google/uuid"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	Trade             string     `json:"trade,omitempty"`
	Date              time.Time  `json:"date"`
	Position          int        `json:"position"`
	DerivationKind    string     `json:"derivation_kind"`
	DependsOnPrevious bool       `json:"depends_on_previous"`
	LinkedGroupID     *uuid.UUID `json:"linked_group_id,omitempty"`
}

// ScheduleDTO is a data transfer object for schedules.
type ScheduleDTO struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Tasks     []TaskDTO `json:"tasks"`
}

// ScheduleCache is a read-side cache keyed by project.
type ScheduleCache interface {
	Get(ctx context.Context, projectID uuid.UUID) (*ScheduleDTO, error)
	Set(ctx context.Context, projectID uuid.UUID, schedule *ScheduleDTO) error
	Invalidate(ctx context.Context, projectID uuid.UUID) error
}

// GetScheduleQuery contains the parameters for getting a schedule.
type GetScheduleQuery struct {
	ProjectID uuid.UUID
}

// GetScheduleHandler handles the GetScheduleQuery with a cache-aside read.
type GetScheduleHandler struct {
	scheduleRepo domain.ScheduleRepository
	cache        ScheduleCache
}

// NewGetScheduleHandler creates a new GetScheduleHandler. The cache may be nil.
func NewGetScheduleHandler(scheduleRepo domain.ScheduleRepository, cache ScheduleCache) *GetScheduleHandler {
	return &GetScheduleHandler{scheduleRepo: scheduleRepo, cache: cache}
}

// Handle executes the GetScheduleQuery. Cache failures fall through to the
// repository, a cold or broken cache never fails a read.
func (h *GetScheduleHandler) Handle(ctx context.Context, query GetScheduleQuery) (*ScheduleDTO, error) {
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, query.ProjectID); err == nil && cached != nil {
			return cached, nil
		}
	}

	schedule, err := h.scheduleRepo.FindByProject(ctx, query.ProjectID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, nil
	}

	dto := ToScheduleDTO(schedule)
	if h.cache != nil {
		_ = h.cache.Set(ctx, query.ProjectID, dto)
	}
	return dto, nil
}

// ToScheduleDTO maps a schedule aggregate to its read model.
func ToScheduleDTO(schedule *domain.Schedule) *ScheduleDTO {
	tasks := make([]TaskDTO, len(schedule.Tasks()))
	for i, task := range schedule.Tasks() {
		derivation := task.Derivation()
		dto := TaskDTO{
			ID:                task.ID(),
			Title:             task.Title(),
			Trade:             task.Trade(),
			Date:              task.Date(),
			Position:          task.Position(),
			DerivationKind:    string(derivation.Kind()),
			DependsOnPrevious: derivation.DependsOnPrevious(),
		}
		if group, ok := derivation.Group(); ok {
			dto.LinkedGroupID = &group
		}
		tasks[i] = dto
	}

	return &ScheduleDTO{
		ID:        schedule.ID(),
		ProjectID: schedule.ProjectID(),
		Tasks:     tasks,
	}
}
