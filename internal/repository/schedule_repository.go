package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hadirku/hadirku-api/internal/models"
)

// ScheduleRepository reads the recurring weekly slots maintained by the
// schedule editor; the engine only consumes them during expansion.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByDay returns every slot recurring on the given weekday.
func (r *ScheduleRepository) ListByDay(ctx context.Context, dayOfWeek string) ([]models.ScheduleSlot, error) {
	query := `SELECT id, class_id, subject_id, teacher_id, day_of_week, start_time, end_time, created_at, updated_at
FROM schedule_slots
WHERE day_of_week = $1
ORDER BY start_time ASC`

	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list schedule slots by day: %w", err)
	}
	return slots, nil
}
