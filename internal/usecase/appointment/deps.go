package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/payment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/revenue"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

// ReminderScheduler plans the cancellation reminder of an approved
// appointment. It must not fail the caller.
type ReminderScheduler interface {
	ScheduleCancellationReminder(ctx context.Context, ap *models.Appointment)
}

// QueueBridge puts a checked-in customer into the salon's walk-in queue.
type QueueBridge interface {
	Enter(ctx context.Context, salonID, customerID uint, ap *models.Appointment, now time.Time) (*models.QueueEntry, error)
}

type nopReminders struct{}

func (nopReminders) ScheduleCancellationReminder(context.Context, *models.Appointment) {}

// Deps is what the appointment use cases share. Zero optional fields get
// working defaults from normalize.
type Deps struct {
	Repo     domain.Repository
	Ledger   loyalty.Ledger
	Sales    revenue.Recorder
	Payments payment.Verifier
	Queue    QueueBridge

	Notifier  notify.Notifier
	Audit     *audit.Dispatcher
	Locker    domain.Locker
	Reminders ReminderScheduler
	Log       zerolog.Logger

	Now                     func() time.Time
	SlotMinutes             int
	CancellationNoticeHours int
}

func (d Deps) normalize() Deps {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}
	if d.Locker == nil {
		d.Locker = domain.NopLocker{}
	}
	if d.Reminders == nil {
		d.Reminders = nopReminders{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.SlotMinutes <= 0 {
		d.SlotMinutes = domain.DefaultSlotMinutes
	}
	if d.CancellationNoticeHours <= 0 {
		d.CancellationNoticeHours = 24
	}
	return d
}

// ======================================================
// Access
// ======================================================

// actorOwner is the salon or freelancer an owner token speaks for.
func actorOwner(a identity.Actor) (domain.Owner, error) {
	switch {
	case a.SalonID != 0:
		return domain.SalonOwner(a.SalonID), nil
	case a.FreelancerID != 0:
		return domain.FreelancerOwner(a.FreelancerID), nil
	}
	return domain.Owner{}, httperr.Forbidden("no_business", "No salon or freelancer profile linked to this account")
}

// ensureOwns checks that the owner actor really owns target.
func ensureOwns(a identity.Actor, t *domain.Target) error {
	if a.Is(identity.RoleAdmin) {
		return nil
	}
	if !a.Is(identity.RoleOwner) || t.OwnerUserID != a.ID {
		return httperr.Forbidden("not_owner", "You do not own this salon")
	}
	return nil
}

// staffContext loads the acting staff member and the owner they work for.
func staffContext(ctx context.Context, repo domain.Repository, a identity.Actor) (*models.Staff, domain.Owner, error) {
	st, err := repo.GetStaff(ctx, a.ID)
	if err != nil {
		return nil, domain.Owner{}, domain.NotFound(err, "staff_not_found", "Staff member not found")
	}
	if !st.Active {
		return nil, domain.Owner{}, httperr.Forbidden("staff_inactive", "Staff member is inactive")
	}
	return st, domain.StaffOwner(st), nil
}

// authorize decides whether a may act on ap at all. Role specific field
// rules are applied by each use case on top.
func authorize(ctx context.Context, repo domain.Repository, a identity.Actor, ap *models.Appointment) error {
	switch a.Role {
	case identity.RoleAdmin:
		return nil

	case identity.RoleCustomer:
		if ap.CustomerID != nil && *ap.CustomerID == a.ID {
			return nil
		}

	case identity.RoleStaff:
		if ap.StaffID != nil && *ap.StaffID == a.ID {
			return nil
		}
		_, owner, err := staffContext(ctx, repo, a)
		if err != nil {
			return err
		}
		if owner == domain.OwnerOf(ap) {
			return nil
		}

	case identity.RoleOwner:
		t, err := domain.LoadTarget(ctx, repo, domain.OwnerOf(ap))
		if err != nil {
			return err
		}
		if t.OwnerUserID == a.ID {
			return nil
		}
	}

	return httperr.Forbidden("forbidden", "You cannot access this appointment")
}

func loadAuthorized(ctx context.Context, repo domain.Repository, a identity.Actor, id uint) (*models.Appointment, error) {
	ap, err := repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, domain.NotFound(err, "appointment_not_found", "Appointment not found")
	}
	if err := authorize(ctx, repo, a, ap); err != nil {
		return nil, err
	}
	return ap, nil
}

// checkStaff verifies st can take a booking for owner covering categories.
func checkStaff(st *models.Staff, owner domain.Owner, categories []string) error {
	if domain.StaffOwner(st) != owner {
		return httperr.Forbidden("staff_not_in_salon", "Staff member does not work here")
	}
	if !st.Active {
		return httperr.Forbidden("staff_inactive", "Staff member is inactive")
	}
	if !domain.HasRequiredSkill(st.Skills, categories) {
		return httperr.Validation("staff_missing_skill", "Staff member does not offer the requested services")
	}
	return nil
}

// ensureFree runs the conflict detector for ap. The caller holds the
// resource lock.
func ensureFree(ctx context.Context, repo domain.Repository, op string, ap *models.Appointment) error {
	if err := domain.CheckPlacement(ctx, repo, ap); err != nil {
		if httperr.IsKind(err, httperr.KindConflict) {
			metrics.IncConflict(op, codeOf(err))
		}
		return err
	}
	return nil
}

func codeOf(err error) string {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return "unknown"
}

// conflictOnUnique turns a store uniqueness failure into a Conflict.
func conflictOnUnique(err error) error {
	if httperr.IsUniqueViolation(err) {
		return httperr.Conflict("time_conflict", "Time slot not available. Please choose a different time.")
	}
	return err
}

// ======================================================
// Side effects
// ======================================================

func (d Deps) audit(a identity.Actor, ap *models.Appointment, action string, meta map[string]any) {
	actorID := a.ID
	d.Audit.Dispatch(audit.Event{
		SalonID:      ap.SalonID,
		FreelancerID: ap.FreelancerID,
		ActorID:      &actorID,
		ActorRole:    string(a.Role),
		Action:       action,
		Entity:       "appointment",
		EntityID:     &ap.ID,
		Metadata:     meta,
	})
}

func (d Deps) notifyCustomer(ctx context.Context, ap *models.Appointment, kind notify.Kind, title, msg string) {
	if ap.CustomerID == nil {
		return
	}
	c, err := d.Repo.GetCustomer(ctx, *ap.CustomerID)
	if err != nil {
		d.Log.Warn().Err(err).Uint("customer_id", *ap.CustomerID).Msg("notify: customer lookup failed")
		return
	}
	d.Notifier.Notify(ctx, notify.Notification{
		To:      notify.ForCustomer(c),
		Kind:    kind,
		Title:   title,
		Message: msg,
		Data:    map[string]any{"appointment_id": ap.ID},
	})
}

func (d Deps) notifyStaff(ctx context.Context, ap *models.Appointment, kind notify.Kind, title, msg string) {
	if ap.StaffID == nil {
		return
	}
	st, err := d.Repo.GetStaff(ctx, *ap.StaffID)
	if err != nil {
		d.Log.Warn().Err(err).Uint("staff_id", *ap.StaffID).Msg("notify: staff lookup failed")
		return
	}
	d.Notifier.Notify(ctx, notify.Notification{
		To:      notify.ForStaff(st),
		Kind:    kind,
		Title:   title,
		Message: msg,
		Data:    map[string]any{"appointment_id": ap.ID},
	})
}

// refundPoints returns redeemed points after a cancellation.
func (d Deps) refundPoints(ctx context.Context, ap *models.Appointment) {
	if ap.PointsRedeemed <= 0 || ap.CustomerID == nil || d.Ledger == nil {
		return
	}
	if err := d.Ledger.Credit(ctx, *ap.CustomerID, ap.PointsRedeemed); err != nil {
		d.Log.Error().Err(err).Uint("appointment_id", ap.ID).Int("points", ap.PointsRedeemed).Msg("loyalty refund failed")
	}
}

func when(ap *models.Appointment) string {
	return fmt.Sprintf("%s at %s", ap.AppointmentDate, ap.AppointmentTime)
}
