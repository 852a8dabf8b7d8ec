package appointment

import (
	"context"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

type CancelInput struct {
	Actor         identity.Actor
	AppointmentID uint
	Reason        string
}

type CancelAppointment struct {
	d Deps
}

func NewCancelAppointment(d Deps) *CancelAppointment {
	return &CancelAppointment{d: d.normalize()}
}

func (uc *CancelAppointment) Execute(ctx context.Context, in CancelInput) (*models.Appointment, error) {
	d := uc.d

	ap, err := loadAuthorized(ctx, d.Repo, in.Actor, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	now := d.Now()

	// Customers must cancel before the notice window opens.
	if in.Actor.Is(identity.RoleCustomer) {
		target, err := domain.LoadTarget(ctx, d.Repo, domain.OwnerOf(ap))
		if err != nil {
			return nil, err
		}
		hours := target.NoticeHours
		if hours <= 0 {
			hours = d.CancellationNoticeHours
		}
		if !ap.StartsAt.IsZero() && ap.StartsAt.Sub(now) <= time.Duration(hours)*time.Hour {
			return nil, httperr.Validation(
				"notice_period",
				fmt.Sprintf("Appointments can only be cancelled more than %d hours in advance", hours),
			)
		}
	}

	if err := domain.Cancel(ap, now); err != nil {
		return nil, err
	}
	if in.Reason != "" {
		line := fmt.Sprintf("[%s] Cancelled by %s: %s", now.UTC().Format("2006-01-02 15:04"), in.Actor.Role, in.Reason)
		if ap.SalonNotes != "" {
			ap.SalonNotes += "\n"
		}
		ap.SalonNotes += line
	}

	if err := d.Repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	d.refundPoints(ctx, ap)

	d.audit(in.Actor, ap, "appointment_cancelled", map[string]any{
		"reason":          in.Reason,
		"points_refunded": ap.PointsRedeemed,
	})

	msg := fmt.Sprintf("The appointment on %s was cancelled.", when(ap))
	if !in.Actor.Is(identity.RoleCustomer) {
		d.notifyCustomer(ctx, ap, notify.KindCancelled, "Appointment cancelled", msg)
	}
	if !in.Actor.Is(identity.RoleStaff) {
		d.notifyStaff(ctx, ap, notify.KindCancelled, "Appointment cancelled", msg)
	}

	return ap, nil
}
