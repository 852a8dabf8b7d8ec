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
)

type RequestShiftSwap struct {
	d Deps
}

func NewRequestShiftSwap(d Deps) *RequestShiftSwap {
	return &RequestShiftSwap{d: d.normalize()}
}

// swappable loads a shift and checks who holds it.
func (d Deps) swappable(ctx context.Context, shiftID, staffID uint, code string) (*models.Appointment, error) {
	ap, err := d.Appointments.GetAppointment(ctx, shiftID)
	if err != nil {
		return nil, appointment.NotFound(err, "shift_not_found", fmt.Sprintf("Shift %d not found", shiftID))
	}
	if ap.StaffID == nil || *ap.StaffID != staffID {
		return nil, httperr.Forbidden(code, fmt.Sprintf("Shift %d is not assigned to that staff member", shiftID))
	}
	status := appointment.Status(ap.Status)
	if !status.Occupying() || status == appointment.StatusStaffBlocked {
		return nil, httperr.Validation("shift_not_swappable", fmt.Sprintf("A %s appointment cannot be swapped", ap.Status))
	}
	return ap, nil
}

func (uc *RequestShiftSwap) Execute(ctx context.Context, actor identity.Actor, in domain.ShiftSwap) (*models.ScheduleRequest, error) {
	d := uc.d

	st, salon, err := d.requester(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.TargetStaffID == st.ID {
		return nil, httperr.Validation("same_staff", "Cannot swap shifts with yourself")
	}

	target, err := d.Appointments.GetStaff(ctx, in.TargetStaffID)
	if err != nil {
		return nil, appointment.NotFound(err, "staff_not_found", "Target staff member not found")
	}
	if target.SalonID == nil || *target.SalonID != salon.ID {
		return nil, httperr.Forbidden("staff_not_in_salon", "Target staff member does not work at this salon")
	}
	if !target.Active {
		return nil, httperr.Forbidden("staff_inactive", "Target staff member is inactive")
	}

	if _, err := d.swappable(ctx, in.RequesterShiftID, st.ID, "not_your_shift"); err != nil {
		return nil, err
	}
	if _, err := d.swappable(ctx, in.TargetShiftID, target.ID, "not_target_shift"); err != nil {
		return nil, err
	}

	r := domain.New(salon.ID, st.ID, in)
	if err := d.Requests.CreateRequest(ctx, r); err != nil {
		return nil, err
	}

	d.audit(actor, r, "shift_swap_requested", map[string]any{
		"target_staff_id": in.TargetStaffID,
	})
	d.notifyStaff(ctx, target.ID, notify.KindSwapRequested, "Shift swap request",
		fmt.Sprintf("%s wants to swap a shift with you.", st.Name), r)

	return r, nil
}
