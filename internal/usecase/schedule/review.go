package schedule

import (
	"context"
	"fmt"
	"slices"

	appointment "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

// Review is the owner's decision on a request.
type Review struct {
	d Deps
}

func NewReview(d Deps) *Review {
	return &Review{d: d.normalize()}
}

func (uc *Review) load(ctx context.Context, actor identity.Actor, id uint) (*models.ScheduleRequest, *models.Salon, error) {
	r, err := uc.d.getRequest(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	salon, err := uc.d.ownedSalon(ctx, actor, r.SalonID)
	if err != nil {
		return nil, nil, err
	}
	return r, salon, nil
}

func (uc *Review) Approve(ctx context.Context, actor identity.Actor, id uint) (*models.ScheduleRequest, error) {
	d := uc.d

	r, _, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Approve(r, actor.ID, d.Now()); err != nil {
		return nil, err
	}

	swap, isSwap := domain.SwapOf(r)
	if isSwap {
		err = uc.swap(ctx, r, swap)
	} else {
		err = d.Requests.UpdateRequest(ctx, r)
	}
	if err != nil {
		return nil, err
	}

	d.audit(actor, r, "schedule_request_approved", map[string]any{"type": r.Type})
	d.notifyStaff(ctx, r.StaffID, notify.KindRequestApproved, "Request approved",
		fmt.Sprintf("Your %s request was approved.", r.Type), r)
	if isSwap {
		d.notifyStaff(ctx, swap.TargetStaffID, notify.KindRequestApproved, "Shift swap approved",
			"A shift swap you accepted was approved.", r)
	}

	return r, nil
}

// swap exchanges the staff of both shifts and stores the approval in one
// transaction. Nothing changes if either shift is gone or would clash.
func (uc *Review) swap(ctx context.Context, r *models.ScheduleRequest, s domain.ShiftSwap) error {
	d := uc.d
	owner := appointment.SalonOwner(r.SalonID)

	a, err := d.Appointments.GetAppointment(ctx, s.RequesterShiftID)
	if err != nil {
		return appointment.NotFound(err, "shift_not_found", "Requester shift no longer exists")
	}
	b, err := d.Appointments.GetAppointment(ctx, s.TargetShiftID)
	if err != nil {
		return appointment.NotFound(err, "shift_not_found", "Target shift no longer exists")
	}

	// Stable lock order across concurrent approvals.
	first, second := r.StaffID, s.TargetStaffID
	if second < first {
		first, second = second, first
	}
	resources := []appointment.Resource{
		{Owner: owner, StaffID: &first},
		{Owner: owner, StaffID: &second},
	}
	var keys []string
	for _, res := range resources {
		for _, date := range []string{a.AppointmentDate, b.AppointmentDate} {
			if k := res.Key(date); !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		release, err := d.Locker.Lock(ctx, k)
		if err != nil {
			return err
		}
		defer release()
	}

	return d.Appointments.WithinTx(ctx, func(ctx context.Context) error {
		for _, res := range resources {
			if err := d.Appointments.LockResource(ctx, res); err != nil {
				return appointment.NotFound(err, "staff_not_found", "Staff member not found")
			}
		}

		// Re-read under the lock.
		a, err := d.Appointments.GetAppointment(ctx, s.RequesterShiftID)
		if err != nil {
			return appointment.NotFound(err, "shift_not_found", "Requester shift no longer exists")
		}
		b, err := d.Appointments.GetAppointment(ctx, s.TargetShiftID)
		if err != nil {
			return appointment.NotFound(err, "shift_not_found", "Target shift no longer exists")
		}
		if a.StaffID == nil || *a.StaffID != r.StaffID || b.StaffID == nil || *b.StaffID != s.TargetStaffID {
			return httperr.Conflict("shift_changed", "One of the shifts was reassigned since the request was made")
		}

		a.StaffID, b.StaffID = b.StaffID, a.StaffID

		if err := d.ensureFree(ctx, "shift_swap", a, b.ID); err != nil {
			return err
		}
		if err := d.ensureFree(ctx, "shift_swap", b, a.ID); err != nil {
			return err
		}
		if err := d.Appointments.UpdateAppointment(ctx, a); err != nil {
			return err
		}
		if err := d.Appointments.UpdateAppointment(ctx, b); err != nil {
			return err
		}
		return d.Requests.UpdateRequest(ctx, r)
	})
}

func (uc *Review) Reject(ctx context.Context, actor identity.Actor, id uint, reason string) (*models.ScheduleRequest, error) {
	d := uc.d

	r, _, err := uc.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Reject(r, actor.ID, reason, d.Now()); err != nil {
		return nil, err
	}
	if err := d.Requests.UpdateRequest(ctx, r); err != nil {
		return nil, err
	}

	d.audit(actor, r, "schedule_request_rejected", map[string]any{"reason": r.RejectionReason})
	d.notifyStaff(ctx, r.StaffID, notify.KindRequestRejected, "Request rejected",
		fmt.Sprintf("Your %s request was rejected: %s", r.Type, r.RejectionReason), r)

	return r, nil
}
