package appointment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

type CheckInInput struct {
	Actor   identity.Actor
	SalonID uint
}

type CheckInResult struct {
	Appointment *models.Appointment `json:"appointment"`
	Queue       *models.QueueEntry  `json:"queue"`
}

// CheckIn starts the customer's next approved appointment at a salon and
// puts them in the day's queue.
type CheckIn struct {
	d Deps
}

func NewCheckIn(d Deps) *CheckIn {
	return &CheckIn{d: d.normalize()}
}

func (uc *CheckIn) Execute(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	d := uc.d

	if !in.Actor.Is(identity.RoleCustomer) {
		return nil, httperr.Forbidden("customers_only", "Only customers can check in")
	}
	if d.Queue == nil {
		return nil, httperr.New(httperr.KindFatal, "queue_unavailable", "Check-in is not available")
	}

	target, err := domain.LoadTarget(ctx, d.Repo, domain.SalonOwner(in.SalonID))
	if err != nil {
		return nil, err
	}
	if err := target.Bookable(); err != nil {
		return nil, err
	}

	now := d.Now()
	today := target.Today(now)

	// --------------------------------------------------
	// 1️⃣ Nearest approved appointment
	// --------------------------------------------------
	ap, err := d.Repo.NextApprovedForCustomer(ctx, in.Actor.ID, in.SalonID, today)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("no_approved_appointment", "No approved appointment found at this salon")
	}
	if err != nil {
		return nil, err
	}
	if timeofday.IsBefore(ap.AppointmentDate, today) {
		return nil, httperr.Validation("past_appointment", "Cannot check in for a past appointment")
	}

	if err := domain.CheckIn(ap, now); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Appointment + queue entry together
	// --------------------------------------------------
	var entry *models.QueueEntry
	err = d.Repo.WithinTx(ctx, func(ctx context.Context) error {
		if err := d.Repo.UpdateAppointment(ctx, ap); err != nil {
			return err
		}
		var err error
		entry, err = d.Queue.Enter(ctx, in.SalonID, in.Actor.ID, ap, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	d.audit(in.Actor, ap, "appointment_checked_in", map[string]any{
		"token":    entry.TokenNumber,
		"position": entry.QueuePosition,
	})
	d.notifyCustomer(ctx, ap, notify.KindCheckedIn, "Checked in",
		fmt.Sprintf("You are checked in at %s. Your token is %s.", target.Name, entry.TokenNumber))
	d.notifyStaff(ctx, ap, notify.KindCheckedIn, "Customer arrived",
		fmt.Sprintf("Token %s checked in for %s.", entry.TokenNumber, when(ap)))

	return &CheckInResult{Appointment: ap, Queue: entry}, nil
}
