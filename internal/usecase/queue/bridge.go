package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/queue"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// SalonLookup is the slice of the appointment store the queue needs.
type SalonLookup interface {
	GetSalon(ctx context.Context, id uint) (*models.Salon, error)
}

// Bridge turns a check-in into a same-day queue entry.
type Bridge struct {
	repo        domain.Repository
	salons      SalonLookup
	maxAttempts int
	log         zerolog.Logger
}

func NewBridge(repo domain.Repository, salons SalonLookup, maxAttempts int, log zerolog.Logger) *Bridge {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}
	return &Bridge{
		repo:        repo,
		salons:      salons,
		maxAttempts: maxAttempts,
		log:         log.With().Str("component", "queue").Logger(),
	}
}

// Enter reuses the customer's entry for today or creates one at the back
// of the line. Other entries keep their positions.
func (b *Bridge) Enter(
	ctx context.Context,
	salonID, customerID uint,
	ap *models.Appointment,
	now time.Time,
) (*models.QueueEntry, error) {
	salon, err := b.salons.GetSalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFoundErr("salon_not_found", "Salon not found")
		}
		return nil, err
	}
	day := timeofday.Today(now, timezone.Location(salon.Timezone))

	var apID *uint
	if ap != nil {
		id := ap.ID
		apID = &id
	}

	// --------------------------------------------------
	// 1️⃣ Existing entry
	// --------------------------------------------------
	e, err := b.repo.FindForCustomer(ctx, salonID, customerID, day)
	switch {
	case err == nil:
		if !domain.Reactivate(e) {
			return e, nil
		}
		e.CheckInTime = &now
		if apID != nil {
			e.AppointmentID = apID
		}
		if err := b.repo.UpdateEntry(ctx, e); err != nil {
			return nil, err
		}
		return e, nil

	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ New entry with the next free token
	// --------------------------------------------------
	waiting, err := b.repo.CountWaiting(ctx, salonID, day)
	if err != nil {
		return nil, err
	}
	last, err := b.repo.LastTokenSeq(ctx, salonID, day)
	if err != nil {
		return nil, err
	}
	prefix := domain.TokenPrefix(salon.Name)

	for attempt := 0; attempt < b.maxAttempts; attempt++ {
		seq := last + 1 + attempt
		e := &models.QueueEntry{
			SalonID:       salonID,
			CustomerID:    customerID,
			AppointmentID: apID,
			QueueDay:      day,
			TokenNumber:   domain.FormatToken(prefix, seq),
			TokenSeq:      seq,
			QueuePosition: waiting + 1,
			Status:        string(domain.StatusArrived),
			CheckInTime:   &now,
		}

		err := b.repo.CreateEntry(ctx, e)
		if err == nil {
			return e, nil
		}
		if !httperr.IsUniqueViolation(err) {
			return nil, err
		}
		b.log.Debug().Str("token", e.TokenNumber).Int("attempt", attempt+1).Msg("token taken, retrying")
	}

	return nil, httperr.Conflict(
		"token_generation_exhausted",
		fmt.Sprintf("Could not assign a queue token after %d attempts", b.maxAttempts),
	)
}
