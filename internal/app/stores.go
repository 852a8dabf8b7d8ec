// Package app assembles the storage backends shared by the API and the
// worker.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-scheduler/internal/db"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/revenue"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/memory"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
)

type Stores struct {
	Appointments domain.Repository
	Requests     schedule.Repository
	Queue        queue.Repository
	Audit        audit.Store
	Ledger       loyalty.Ledger
	Sales        revenue.Recorder

	close func() error
}

// Open connects the backend named by STORE_DRIVER.
func Open(cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("using the in-memory sqlite store, data is lost on restart")
		s, err := memory.New()
		if err != nil {
			return nil, err
		}
		return &Stores{
			Appointments: s,
			Requests:     s,
			Queue:        s,
			Audit:        s,
			Ledger:       s,
			Sales:        s,
			close:        s.Close,
		}, nil

	case "postgres":
		db, err := dbpkg.NewDB(cfg, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}
		return &Stores{
			Appointments: infraRepo.NewAppointmentGormRepository(db),
			Requests:     infraRepo.NewScheduleGormRepository(db),
			Queue:        infraRepo.NewQueueGormRepository(db),
			Audit:        audit.New(db),
			Ledger:       infraRepo.NewLedgerGorm(db),
			Sales:        infraRepo.NewSaleGormRecorder(db),
			close:        sqlDB.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
