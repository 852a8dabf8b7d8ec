package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	appointment "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

type Deps struct {
	Appointments appointment.Repository
	Requests     domain.Repository

	Notifier notify.Notifier
	Audit    *audit.Dispatcher
	Locker   appointment.Locker
	Log      zerolog.Logger
	Now      func() time.Time
}

func (d Deps) normalize() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Locker == nil {
		d.Locker = appointment.NopLocker{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// requester loads the acting staff member. Requests belong to salons, so
// freelancer staff cannot raise them.
func (d Deps) requester(ctx context.Context, a identity.Actor) (*models.Staff, *models.Salon, error) {
	if !a.Is(identity.RoleStaff) {
		return nil, nil, httperr.Forbidden("staff_only", "Only staff members can do this")
	}
	st, err := d.Appointments.GetStaff(ctx, a.ID)
	if err != nil {
		return nil, nil, appointment.NotFound(err, "staff_not_found", "Staff member not found")
	}
	if !st.Active {
		return nil, nil, httperr.Forbidden("staff_inactive", "Staff member is inactive")
	}
	if st.SalonID == nil {
		return nil, nil, httperr.Forbidden("salon_staff_only", "Schedule requests are only available to salon staff")
	}
	salon, err := d.Appointments.GetSalon(ctx, *st.SalonID)
	if err != nil {
		return nil, nil, appointment.NotFound(err, "salon_not_found", "Salon not found")
	}
	return st, salon, nil
}

// ownedSalon checks that an owner actor owns salonID.
func (d Deps) ownedSalon(ctx context.Context, a identity.Actor, salonID uint) (*models.Salon, error) {
	if !a.Is(identity.RoleOwner, identity.RoleAdmin) {
		return nil, httperr.Forbidden("owners_only", "Only the salon owner can do this")
	}
	salon, err := d.Appointments.GetSalon(ctx, salonID)
	if err != nil {
		return nil, appointment.NotFound(err, "salon_not_found", "Salon not found")
	}
	if !a.Is(identity.RoleAdmin) && salon.OwnerID != a.ID {
		return nil, httperr.Forbidden("not_owner", "You do not own this salon")
	}
	return salon, nil
}

func (d Deps) getRequest(ctx context.Context, id uint) (*models.ScheduleRequest, error) {
	r, err := d.Requests.GetRequest(ctx, id)
	if err != nil {
		return nil, appointment.NotFound(err, "request_not_found", "Schedule request not found")
	}
	return r, nil
}

func (d Deps) ensureFree(ctx context.Context, op string, ap *models.Appointment, exclude ...uint) error {
	err := appointment.CheckPlacement(ctx, d.Appointments, ap, exclude...)
	var be httperr.BusinessError
	if errors.As(err, &be) && be.Kind == httperr.KindConflict {
		metrics.IncConflict(op, be.Code)
	}
	return err
}

func (d Deps) audit(a identity.Actor, r *models.ScheduleRequest, action string, meta map[string]any) {
	actorID := a.ID
	d.Audit.Dispatch(audit.Event{
		SalonID:   &r.SalonID,
		ActorID:   &actorID,
		ActorRole: string(a.Role),
		Action:    action,
		Entity:    "schedule_request",
		EntityID:  &r.ID,
		Metadata:  meta,
	})
}

func (d Deps) notifyStaff(ctx context.Context, staffID uint, kind notify.Kind, title, msg string, r *models.ScheduleRequest) {
	st, err := d.Appointments.GetStaff(ctx, staffID)
	if err != nil {
		d.Log.Warn().Err(err).Uint("staff_id", staffID).Msg("notify: staff lookup failed")
		return
	}
	d.Notifier.Notify(ctx, notify.Notification{
		To:      notify.ForStaff(st),
		Kind:    kind,
		Title:   title,
		Message: msg,
		Data:    map[string]any{"request_id": r.ID},
	})
}

func (d Deps) notifyOwner(ctx context.Context, salon *models.Salon, kind notify.Kind, title, msg string, r *models.ScheduleRequest) {
	d.Notifier.Notify(ctx, notify.Notification{
		To:      notify.ForSalon(salon),
		Kind:    kind,
		Title:   title,
		Message: msg,
		Data:    map[string]any{"request_id": r.ID},
	})
}
