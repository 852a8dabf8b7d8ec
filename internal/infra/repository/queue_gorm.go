package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type QueueGormRepository struct {
	db *gorm.DB
}

func NewQueueGormRepository(db *gorm.DB) *QueueGormRepository {
	return &QueueGormRepository{db: db}
}

func (r *QueueGormRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withinTx(ctx, r.db, fn)
}

func (r *QueueGormRepository) FindForCustomer(
	ctx context.Context,
	salonID, customerID uint,
	day string,
) (*models.QueueEntry, error) {
	var e models.QueueEntry
	if err := conn(ctx, r.db).
		Where("salon_id = ? AND customer_id = ? AND queue_day = ?", salonID, customerID, day).
		Order("id DESC").
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *QueueGormRepository) CountWaiting(ctx context.Context, salonID uint, day string) (int, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&models.QueueEntry{}).
		Where("salon_id = ? AND queue_day = ? AND status = ?", salonID, day, string(queue.StatusWaiting)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *QueueGormRepository) LastTokenSeq(ctx context.Context, salonID uint, day string) (int, error) {
	var out struct{ Seq int }
	if err := conn(ctx, r.db).
		Model(&models.QueueEntry{}).
		Select("COALESCE(MAX(token_seq), 0) AS seq").
		Where("salon_id = ? AND queue_day = ?", salonID, day).
		Scan(&out).Error; err != nil {
		return 0, err
	}
	return out.Seq, nil
}

// CreateEntry runs in its own savepoint so a token collision does not
// poison an enclosing transaction.
func (r *QueueGormRepository) CreateEntry(ctx context.Context, e *models.QueueEntry) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(e).Error
	})
}

func (r *QueueGormRepository) UpdateEntry(ctx context.Context, e *models.QueueEntry) error {
	return conn(ctx, r.db).Save(e).Error
}

func (r *QueueGormRepository) GetByToken(
	ctx context.Context,
	salonID uint,
	day, token string,
) (*models.QueueEntry, error) {
	var e models.QueueEntry
	if err := conn(ctx, r.db).
		Where("salon_id = ? AND queue_day = ? AND token_number = ?", salonID, day, token).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *QueueGormRepository) ListForDay(ctx context.Context, salonID uint, day string) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	if err := conn(ctx, r.db).
		Where("salon_id = ? AND queue_day = ?", salonID, day).
		Order("queue_position ASC, token_seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *QueueGormRepository) CloseGap(ctx context.Context, salonID uint, day string, position int) error {
	return conn(ctx, r.db).
		Model(&models.QueueEntry{}).
		Where("salon_id = ? AND queue_day = ? AND queue_position > ?", salonID, day, position).
		Where("status IN ?", []string{string(queue.StatusWaiting), string(queue.StatusArrived)}).
		UpdateColumn("queue_position", gorm.Expr("queue_position - 1")).
		Error
}

var _ queue.Repository = (*QueueGormRepository)(nil)
