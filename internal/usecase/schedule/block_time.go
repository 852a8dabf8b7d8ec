package schedule

import (
	"context"
	"fmt"

	appointment "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

type BlockTimeResult struct {
	Request     *models.ScheduleRequest `json:"request"`
	Appointment *models.Appointment     `json:"appointment"`
}

// BlockTime reserves part of a staff member's day. It is approved on the
// spot and takes part in conflict checks like any booking.
type BlockTime struct {
	d Deps
}

func NewBlockTime(d Deps) *BlockTime {
	return &BlockTime{d: d.normalize()}
}

func (uc *BlockTime) Execute(ctx context.Context, actor identity.Actor, in domain.BlockTime) (*BlockTimeResult, error) {
	d := uc.d

	st, salon, err := d.requester(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	start, end, _ := in.Window()

	now := d.Now()
	loc := timezone.Location(salon.Timezone)
	day, _ := timeofday.NormalizeDate(in.Date)
	if timeofday.IsBefore(day, timeofday.Today(now, loc)) {
		return nil, httperr.Validation("past_date", "Cannot block time in the past")
	}

	staffID := st.ID
	salonID := salon.ID
	ap := &models.Appointment{
		SalonID:       &salonID,
		StaffID:       &staffID,
		Status:        string(appointment.StatusStaffBlocked),
		PaymentStatus: appointment.PaymentPending,
		Source:        appointment.SourceStaff,
		BlockReason:   in.Reason,
		StaffNotes:    fmt.Sprintf("Blocked: %s", in.Reason),
	}
	if err := appointment.Place(ap, day, in.StartTime, end-start, loc); err != nil {
		return nil, err
	}

	r := domain.New(salon.ID, st.ID, in)
	r.BlockTime.Date = day
	r.Status = string(domain.StatusApproved)
	r.ApprovedAt = &now

	res := appointment.Resource{Owner: appointment.SalonOwner(salon.ID), StaffID: &staffID}
	release, err := d.Locker.Lock(ctx, res.Key(day))
	if err != nil {
		return nil, err
	}
	defer release()

	err = d.Appointments.WithinTx(ctx, func(ctx context.Context) error {
		if err := d.Appointments.LockResource(ctx, res); err != nil {
			return appointment.NotFound(err, "resource_not_found", "Staff member not found")
		}
		if err := d.ensureFree(ctx, "block_time", ap); err != nil {
			return err
		}
		if err := d.Appointments.CreateAppointment(ctx, ap); err != nil {
			return err
		}
		r.BlockedAppointmentID = &ap.ID
		return d.Requests.CreateRequest(ctx, r)
	})
	if err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.Conflict("time_conflict", "Time slot not available. Please choose a different time.")
		}
		return nil, err
	}

	d.audit(actor, r, "time_blocked", map[string]any{
		"date":   day,
		"start":  in.StartTime,
		"end":    in.EndTime,
		"reason": in.Reason,
	})
	d.notifyOwner(ctx, salon, notify.KindTimeBlocked, "Time blocked",
		fmt.Sprintf("%s blocked %s %s-%s (%s).", st.Name, day, ap.AppointmentTime, ap.EstimatedEndTime, in.Reason), r)

	return &BlockTimeResult{Request: r, Appointment: ap}, nil
}
