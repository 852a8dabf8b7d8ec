package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type ScheduleGormRepository struct {
	db *gorm.DB
}

func NewScheduleGormRepository(db *gorm.DB) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db}
}

func (r *ScheduleGormRepository) CreateRequest(ctx context.Context, req *models.ScheduleRequest) error {
	return conn(ctx, r.db).Create(req).Error
}

func (r *ScheduleGormRepository) GetRequest(ctx context.Context, id uint) (*models.ScheduleRequest, error) {
	var req models.ScheduleRequest
	if err := conn(ctx, r.db).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ScheduleGormRepository) UpdateRequest(ctx context.Context, req *models.ScheduleRequest) error {
	return conn(ctx, r.db).Save(req).Error
}

func (r *ScheduleGormRepository) ListByStaff(
	ctx context.Context,
	staffID uint,
	status string,
	offset, limit int,
) ([]models.ScheduleRequest, int64, error) {
	base := func() *gorm.DB {
		q := conn(ctx, r.db).
			Model(&models.ScheduleRequest{}).
			Where("(staff_id = ? OR swap_target_staff_id = ?)", staffID, staffID)
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.ScheduleRequest
	if err := base().Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ScheduleGormRepository) ListActionable(ctx context.Context, salonID uint) ([]models.ScheduleRequest, error) {
	var out []models.ScheduleRequest
	if err := conn(ctx, r.db).
		Where("salon_id = ? AND status IN ?", salonID, []string{
			string(schedule.StatusPending),
			string(schedule.StatusPeerApproved),
		}).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

var _ schedule.Repository = (*ScheduleGormRepository)(nil)
