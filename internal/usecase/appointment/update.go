package appointment

import (
	"context"
	"fmt"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

// UpdateInput carries optional changes; nil fields are left alone.
type UpdateInput struct {
	Actor         identity.Actor
	AppointmentID uint

	Status          *string
	CustomerNotes   *string
	SpecialRequests *string
	StaffNotes      *string
	SalonNotes      *string
	StaffID         *uint

	// Admin only.
	Date *string
	Time *string
}

func (in UpdateInput) touchesCustomerFields() bool {
	return in.CustomerNotes != nil || in.SpecialRequests != nil
}

func (in UpdateInput) touchesStaffFields() bool {
	return in.Status != nil || in.StaffNotes != nil || in.SalonNotes != nil || in.StaffID != nil
}

func (in UpdateInput) touchesSchedule() bool {
	return in.Date != nil || in.Time != nil
}

func (in UpdateInput) movesPlacement(ap *models.Appointment) bool {
	if in.touchesSchedule() {
		return true
	}
	return in.StaffID != nil && (ap.StaffID == nil || *ap.StaffID != *in.StaffID)
}

// checkFields enforces which fields each role may change.
func (in UpdateInput) checkFields(ap *models.Appointment) error {
	switch in.Actor.Role {
	case identity.RoleAdmin:
		return nil

	case identity.RoleCustomer:
		if in.touchesStaffFields() || in.touchesSchedule() {
			return httperr.Forbidden("field_not_allowed", "Customers can only edit their notes")
		}
		if domain.Status(ap.Status) != domain.StatusPending {
			return httperr.Forbidden("not_editable", "Notes can only be edited while the appointment is pending")
		}
		return nil

	case identity.RoleStaff, identity.RoleOwner:
		if in.touchesCustomerFields() || in.touchesSchedule() {
			return httperr.Forbidden("field_not_allowed", "Use reschedule to move an appointment")
		}
		return nil
	}
	return httperr.Forbidden("forbidden", "You cannot edit this appointment")
}

type UpdateAppointment struct {
	d Deps
}

func NewUpdateAppointment(d Deps) *UpdateAppointment {
	return &UpdateAppointment{d: d.normalize()}
}

func (uc *UpdateAppointment) Execute(ctx context.Context, in UpdateInput) (*models.Appointment, error) {
	d := uc.d

	ap, err := loadAuthorized(ctx, d.Repo, in.Actor, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := in.checkFields(ap); err != nil {
		return nil, err
	}
	if domain.Status(ap.Status) == domain.StatusStaffBlocked && in.movesPlacement(ap) {
		return nil, httperr.InvalidTransition("not_reschedulable", "Blocked time cannot be moved, only removed by the staff member who created it")
	}

	now := d.Now()
	prevStatus := domain.Status(ap.Status)

	if in.CustomerNotes != nil {
		ap.CustomerNotes = *in.CustomerNotes
	}
	if in.SpecialRequests != nil {
		ap.SpecialRequests = *in.SpecialRequests
	}
	if in.StaffNotes != nil {
		ap.StaffNotes = *in.StaffNotes
	}
	if in.SalonNotes != nil {
		ap.SalonNotes = *in.SalonNotes
	}
	if in.Status != nil && domain.Status(*in.Status) != prevStatus {
		if err := domain.ManualTransition(ap, domain.Status(*in.Status), now); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// Placement changes re-run the conflict detector
	// --------------------------------------------------
	moved := false
	if in.StaffID != nil && (ap.StaffID == nil || *ap.StaffID != *in.StaffID) {
		st, err := d.Repo.GetStaff(ctx, *in.StaffID)
		if err != nil {
			return nil, domain.NotFound(err, "staff_not_found", "Staff member not found")
		}
		if err := checkStaff(st, domain.OwnerOf(ap), domain.Categories(ap)); err != nil {
			return nil, err
		}
		staffID := st.ID
		ap.StaffID = &staffID
		moved = true
	}
	if in.touchesSchedule() {
		target, err := domain.LoadTarget(ctx, d.Repo, domain.OwnerOf(ap))
		if err != nil {
			return nil, err
		}
		date, tod := ap.AppointmentDate, ap.AppointmentTime
		if in.Date != nil {
			date = *in.Date
		}
		if in.Time != nil {
			tod = *in.Time
		}
		if err := domain.Place(ap, date, tod, ap.EstimatedDuration, target.Location()); err != nil {
			return nil, err
		}
		moved = true
	}
	if moved && !domain.Status(ap.Status).Occupying() {
		return nil, httperr.InvalidTransition("not_reschedulable", "Only active appointments can be moved")
	}

	res := domain.Resource{Owner: domain.OwnerOf(ap), StaffID: ap.StaffID}
	if moved {
		release, err := d.Locker.Lock(ctx, res.Key(ap.AppointmentDate))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	err = d.Repo.WithinTx(ctx, func(ctx context.Context) error {
		if moved {
			if err := d.Repo.LockResource(ctx, res); err != nil {
				return domain.NotFound(err, "resource_not_found", "Salon or staff member not found")
			}
			if err := ensureFree(ctx, d.Repo, "update", ap); err != nil {
				return err
			}
		}
		return d.Repo.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, conflictOnUnique(err)
	}

	// --------------------------------------------------
	// Side effects
	// --------------------------------------------------
	status := domain.Status(ap.Status)
	if status != prevStatus {
		switch status {
		case domain.StatusApproved:
			d.Reminders.ScheduleCancellationReminder(ctx, ap)
		case domain.StatusCancelled:
			d.refundPoints(ctx, ap)
		}
	}

	d.audit(in.Actor, ap, "appointment_updated", map[string]any{
		"from_status": prevStatus,
		"status":      ap.Status,
		"moved":       moved,
	})

	if in.Actor.Is(identity.RoleCustomer) {
		d.notifyStaff(ctx, ap, notify.KindAppointmentUpdated, "Appointment updated",
			fmt.Sprintf("The customer updated the notes of the appointment on %s.", when(ap)))
	} else {
		d.notifyCustomer(ctx, ap, notify.KindAppointmentUpdated, "Appointment updated",
			fmt.Sprintf("Your appointment on %s is now %s.", when(ap), ap.Status))
	}

	return ap, nil
}
