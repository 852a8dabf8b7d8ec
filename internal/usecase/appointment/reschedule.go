package appointment

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

type RescheduleInput struct {
	Actor         identity.Actor
	AppointmentID uint
	Date          string
	Time          string
	StaffID       *uint
	Reason        string
}

type RescheduleAppointment struct {
	d Deps
}

func NewRescheduleAppointment(d Deps) *RescheduleAppointment {
	return &RescheduleAppointment{d: d.normalize()}
}

func (uc *RescheduleAppointment) Execute(ctx context.Context, in RescheduleInput) (*models.Appointment, error) {
	d := uc.d

	if !in.Actor.Is(identity.RoleOwner, identity.RoleAdmin) {
		return nil, httperr.Forbidden("owners_only", "Only the salon owner can reschedule")
	}

	ap, err := d.Repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, domain.NotFound(err, "appointment_not_found", "Appointment not found")
	}

	target, err := domain.LoadTarget(ctx, d.Repo, domain.OwnerOf(ap))
	if err != nil {
		return nil, err
	}
	if err := ensureOwns(in.Actor, target); err != nil {
		return nil, err
	}

	status := domain.Status(ap.Status)
	if !status.Occupying() || status == domain.StatusStaffBlocked {
		return nil, httperr.InvalidTransition(
			"not_reschedulable",
			fmt.Sprintf("A %s appointment cannot be rescheduled", ap.Status),
		)
	}

	now := d.Now()
	day, err := timeofday.NormalizeDate(in.Date)
	if err != nil {
		return nil, httperr.Validation("invalid_date", "Date must be YYYY-MM-DD")
	}
	if timeofday.IsBefore(day, target.Today(now)) {
		return nil, httperr.Validation("past_date", "Cannot move an appointment into the past")
	}

	from := when(ap)
	fromStartsAt := ap.StartsAt

	if in.StaffID != nil && (ap.StaffID == nil || *ap.StaffID != *in.StaffID) {
		st, err := d.Repo.GetStaff(ctx, *in.StaffID)
		if err != nil {
			return nil, domain.NotFound(err, "staff_not_found", "Staff member not found")
		}
		if err := checkStaff(st, target.Owner, domain.Categories(ap)); err != nil {
			return nil, err
		}
		staffID := st.ID
		ap.StaffID = &staffID
	}

	if err := domain.Place(ap, day, in.Time, ap.EstimatedDuration, target.Location()); err != nil {
		return nil, err
	}

	line := fmt.Sprintf("[%s] Rescheduled from %s to %s",
		now.In(target.Location()).Format("2006-01-02 15:04"), from, when(ap))
	if r := strings.TrimSpace(in.Reason); r != "" {
		line += " (" + r + ")"
	}
	if ap.SalonNotes != "" {
		ap.SalonNotes += "\n"
	}
	ap.SalonNotes += line

	res := domain.Resource{Owner: target.Owner, StaffID: ap.StaffID}
	release, err := d.Locker.Lock(ctx, res.Key(ap.AppointmentDate))
	if err != nil {
		return nil, err
	}
	defer release()

	err = d.Repo.WithinTx(ctx, func(ctx context.Context) error {
		if err := d.Repo.LockResource(ctx, res); err != nil {
			return domain.NotFound(err, "resource_not_found", "Salon or staff member not found")
		}
		if err := ensureFree(ctx, d.Repo, "reschedule", ap); err != nil {
			return err
		}
		return d.Repo.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, conflictOnUnique(err)
	}

	if status == domain.StatusApproved && !ap.StartsAt.Equal(fromStartsAt) {
		d.Reminders.ScheduleCancellationReminder(ctx, ap)
	}

	d.audit(in.Actor, ap, "appointment_rescheduled", map[string]any{
		"from": from,
		"to":   when(ap),
	})
	d.notifyCustomer(ctx, ap, notify.KindRescheduled, "Appointment rescheduled",
		fmt.Sprintf("Your appointment at %s moved from %s to %s.", target.Name, from, when(ap)))
	d.notifyStaff(ctx, ap, notify.KindRescheduled, "Appointment rescheduled",
		fmt.Sprintf("An appointment moved to %s.", when(ap)))

	return ap, nil
}
