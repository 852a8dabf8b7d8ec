package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Sink persists audit rows.
type Sink interface {
	Write(ctx context.Context, entry *models.AuditLog) error
}

// Store is a Sink that can also be read back for the owner's audit view.
type Store interface {
	Sink
	ListAudit(ctx context.Context, salonID uint, limit int) ([]models.AuditLog, error)
}

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Write(ctx context.Context, entry *models.AuditLog) error {
	return l.db.WithContext(ctx).Create(entry).Error
}

func (l *Logger) ListAudit(ctx context.Context, salonID uint, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := l.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

var _ Store = (*Logger)(nil)

func toRow(ev Event) *models.AuditLog {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	return &models.AuditLog{
		SalonID:      ev.SalonID,
		FreelancerID: ev.FreelancerID,
		ActorID:      ev.ActorID,
		ActorRole:    ev.ActorRole,
		Action:       ev.Action,
		Entity:       ev.Entity,
		EntityID:     ev.EntityID,
		Metadata:     metaJSON,
	}
}
