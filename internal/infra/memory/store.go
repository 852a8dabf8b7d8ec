// Package memory runs the gorm repositories on a private in-memory SQLite
// database. It backs STORE_DRIVER=memory and the use case tests.
package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	dbpkg "github.com/BruksfildServices01/salon-scheduler/internal/db"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/revenue"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Store bundles every gorm repository over one database.
type Store struct {
	*infraRepo.AppointmentGormRepository
	*infraRepo.ScheduleGormRepository
	*infraRepo.QueueGormRepository
	*infraRepo.LedgerGorm
	*infraRepo.SaleGormRecorder
	*audit.Logger

	db *gorm.DB
}

var (
	_ domain.Repository   = (*Store)(nil)
	_ schedule.Repository = (*Store)(nil)
	_ queue.Repository    = (*Store)(nil)
	_ loyalty.Ledger      = (*Store)(nil)
	_ revenue.Recorder    = (*Store)(nil)
	_ audit.Store         = (*Store)(nil)
)

// New opens a fresh database. Every Store gets its own, so tests never
// share rows.
func New() (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	// One connection keeps the database alive and serializes writers the
	// way the Postgres row locks do.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := dbpkg.Migrate(db); err != nil {
		return nil, err
	}

	return &Store{
		AppointmentGormRepository: infraRepo.NewAppointmentGormRepository(db),
		ScheduleGormRepository:    infraRepo.NewScheduleGormRepository(db),
		QueueGormRepository:       infraRepo.NewQueueGormRepository(db),
		LedgerGorm:                infraRepo.NewLedgerGorm(db),
		SaleGormRecorder:          infraRepo.NewSaleGormRecorder(db),
		Logger:                    audit.New(db),
		db:                        db,
	}, nil
}

// MustNew is New for fixtures.
func MustNew() *Store {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// WithinTx picks one of the identical embedded implementations.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.AppointmentGormRepository.WithinTx(ctx, fn)
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --------------------------------------------------
// Seeding (panics on failure)
// --------------------------------------------------

func (s *Store) seed(v any) {
	if err := s.db.Create(v).Error; err != nil {
		panic(fmt.Sprintf("seed %T: %v", v, err))
	}
}

// keepInactive writes active=false back, since Create swaps a false for
// the column default.
func (s *Store) keepInactive(model any, active bool) {
	if active {
		return
	}
	if err := s.db.Model(model).Update("active", false).Error; err != nil {
		panic(fmt.Sprintf("seed %T: %v", model, err))
	}
}

func (s *Store) AddSalon(v models.Salon) *models.Salon {
	active := v.Active
	s.seed(&v)
	s.keepInactive(&v, active)
	v.Active = active
	return &v
}

func (s *Store) AddFreelancer(v models.Freelancer) *models.Freelancer {
	s.seed(&v)
	return &v
}

func (s *Store) AddStaff(v models.Staff) *models.Staff {
	active := v.Active
	s.seed(&v)
	s.keepInactive(&v, active)
	v.Active = active
	return &v
}

func (s *Store) AddCustomer(v models.Customer) *models.Customer {
	s.seed(&v)
	return &v
}

// Sales returns the recorded sales in insertion order.
func (s *Store) Sales() []models.SaleRecord {
	var out []models.SaleRecord
	if err := s.db.Order("id ASC").Find(&out).Error; err != nil {
		panic(fmt.Sprintf("list sales: %v", err))
	}
	return out
}
