package schedule

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type Repository interface {
	CreateRequest(ctx context.Context, r *models.ScheduleRequest) error
	GetRequest(ctx context.Context, id uint) (*models.ScheduleRequest, error)
	UpdateRequest(ctx context.Context, r *models.ScheduleRequest) error

	// ListByStaff pages through requests raised by or targeting staffID,
	// newest first. An empty status matches all.
	ListByStaff(ctx context.Context, staffID uint, status string, offset, limit int) ([]models.ScheduleRequest, int64, error)

	// ListActionable returns the salon's pending and peer-approved requests.
	ListActionable(ctx context.Context, salonID uint) ([]models.ScheduleRequest, error)
}
