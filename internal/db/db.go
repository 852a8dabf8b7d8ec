package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

func NewDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := addOverlapGuard(db); err != nil {
		// The row lock in the store still prevents double booking.
		log.Warn().Err(err).Msg("appointment overlap constraint not installed")
	}

	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Salon{},
		&models.Freelancer{},
		&models.Staff{},
		&models.Customer{},
		&models.Service{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.ScheduleRequest{},
		&models.QueueEntry{},
		&models.SaleRecord{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// addOverlapGuard installs a Postgres exclusion constraint so two occupying
// appointments of one staff member can never overlap on the same day.
func addOverlapGuard(db *gorm.DB) error {
	quoted := make([]string, 0, len(appointment.OccupyingStatuses))
	for _, s := range appointment.OccupyingStatuses {
		quoted = append(quoted, "'"+string(s)+"'")
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}

	return db.Exec(fmt.Sprintf(`
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'appointments_staff_no_overlap'
			) THEN
				ALTER TABLE appointments
				ADD CONSTRAINT appointments_staff_no_overlap
				EXCLUDE USING gist (
					staff_id WITH =,
					appointment_date WITH =,
					int4range(start_minutes, end_minutes) WITH &&
				)
				WHERE (staff_id IS NOT NULL AND status IN (%s));
			END IF;
		END $$;
	`, strings.Join(quoted, ", "))).Error
}
