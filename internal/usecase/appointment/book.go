package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/loyalty"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

// ======================================================
// INPUT
// ======================================================

type BookInput struct {
	Actor identity.Actor

	// Exactly one of SalonID / FreelancerID.
	SalonID      uint
	FreelancerID uint
	StaffID      *uint

	Items []domain.LineItem
	Date  string
	Time  string

	Redemption loyalty.Redemption

	CustomerNotes   string
	SpecialRequests string

	// Optional. Repeating a key returns the appointment created first.
	IdempotencyKey string
}

func (in BookInput) owner() (domain.Owner, error) {
	switch {
	case in.SalonID != 0 && in.FreelancerID == 0:
		return domain.SalonOwner(in.SalonID), nil
	case in.FreelancerID != 0 && in.SalonID == 0:
		return domain.FreelancerOwner(in.FreelancerID), nil
	}
	return domain.Owner{}, httperr.Validation("invalid_target", "Exactly one of salon or freelancer is required")
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	d Deps
}

func NewBookAppointment(d Deps) *BookAppointment {
	return &BookAppointment{d: d.normalize()}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(ctx context.Context, in BookInput) (*models.Appointment, error) {
	ap, err := uc.book(ctx, in)
	switch {
	case err == nil:
		metrics.IncBooking("created")
	case httperr.IsKind(err, httperr.KindConflict):
		metrics.IncBooking("conflict")
	case httperr.IsKind(err, httperr.KindFatal):
		metrics.IncBooking("error")
	default:
		metrics.IncBooking("rejected")
	}
	return ap, err
}

func (uc *BookAppointment) book(ctx context.Context, in BookInput) (*models.Appointment, error) {
	d := uc.d

	if !in.Actor.Is(identity.RoleCustomer) {
		return nil, httperr.Forbidden("customers_only", "Only customers can book appointments")
	}
	customerID := in.Actor.ID

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if prev, err := d.Repo.FindByIdempotencyKey(ctx, customerID, key); err == nil {
			return prev, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 1️⃣ Salon / freelancer
	// --------------------------------------------------
	owner, err := in.owner()
	if err != nil {
		return nil, err
	}
	target, err := domain.LoadTarget(ctx, d.Repo, owner)
	if err != nil {
		return nil, err
	}
	if err := target.Bookable(); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Date in the target's timezone
	// --------------------------------------------------
	now := d.Now()
	day, err := timeofday.NormalizeDate(in.Date)
	if err != nil {
		return nil, httperr.Validation("invalid_date", "Date must be YYYY-MM-DD")
	}
	if timeofday.IsBefore(day, target.Today(now)) {
		return nil, httperr.Validation("past_date", "Cannot book an appointment in the past")
	}

	// --------------------------------------------------
	// 3️⃣ Pricing
	// --------------------------------------------------
	quote, err := domain.Price(in.Items, func(id uint) (*models.Service, error) {
		svc, err := d.Repo.GetService(ctx, owner, id)
		if err != nil {
			return nil, domain.NotFound(err, "service_not_found", fmt.Sprintf("Service %d not found", id))
		}
		return svc, nil
	})
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		CustomerID:      &customerID,
		StaffID:         in.StaffID,
		Services:        quote.Lines,
		TotalAmount:     quote.Total,
		FinalAmount:     quote.Total,
		Status:          string(domain.InitialStatus()),
		PaymentStatus:   domain.PaymentPending,
		Source:          domain.SourceWebsite,
		CustomerNotes:   in.CustomerNotes,
		SpecialRequests: in.SpecialRequests,
	}
	owner.Assign(ap)
	if key != "" {
		ap.IdempotencyKey = &key
	}
	if err := domain.Place(ap, day, in.Time, quote.Duration, target.Location()); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4️⃣ Staff
	// --------------------------------------------------
	if in.StaffID != nil {
		st, err := d.Repo.GetStaff(ctx, *in.StaffID)
		if err != nil {
			return nil, domain.NotFound(err, "staff_not_found", "Staff member not found")
		}
		if err := checkStaff(st, owner, quote.Categories()); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 5️⃣ Loyalty redemption
	// --------------------------------------------------
	var debited int
	if in.Redemption.Requested() {
		if d.Ledger == nil {
			return nil, httperr.Validation("loyalty_unavailable", "Loyalty points cannot be redeemed right now")
		}
		balance, err := d.Ledger.Balance(ctx, customerID)
		if err != nil {
			return nil, domain.NotFound(err, "customer_not_found", "Customer not found")
		}
		if err := in.Redemption.Validate(balance, quote.Total); err != nil {
			return nil, err
		}
		ok, err := d.Ledger.Debit(ctx, customerID, in.Redemption.Points)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, httperr.Validation("insufficient_points", "Insufficient loyalty points")
		}
		debited = in.Redemption.Points

		ap.PointsRedeemed = in.Redemption.Points
		ap.DiscountFromPoints = in.Redemption.Discount
		ap.FinalAmount = loyalty.FinalAmount(quote.Total, in.Redemption.Discount)
	}

	// --------------------------------------------------
	// 6️⃣ Conflict check + insert (atomic per resource/date)
	// --------------------------------------------------
	replay, err := uc.insert(ctx, ap, key)
	if (err != nil || replay != nil) && debited > 0 {
		if cerr := d.Ledger.Credit(ctx, customerID, debited); cerr != nil {
			d.Log.Error().Err(cerr).Uint("customer_id", customerID).Int("points", debited).Msg("loyalty credit-back failed")
		}
	}
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	// --------------------------------------------------
	// 7️⃣ Side effects
	// --------------------------------------------------
	d.audit(in.Actor, ap, "appointment_created", map[string]any{
		"date":         ap.AppointmentDate,
		"time":         ap.AppointmentTime,
		"final_amount": ap.FinalAmount,
	})
	d.notifyCustomer(ctx, ap, notify.KindBookingCreated,
		"Booking received",
		fmt.Sprintf("Your booking at %s on %s is pending confirmation.", target.Name, when(ap)),
	)
	d.notifyStaff(ctx, ap, notify.KindBookingCreated,
		"New booking",
		fmt.Sprintf("You have a new booking on %s.", when(ap)),
	)

	return ap, nil
}

// insert runs the conflict detector and creates ap in one transaction that
// holds the resource lock. A non-nil replay means another request with the
// same idempotency key won.
func (uc *BookAppointment) insert(ctx context.Context, ap *models.Appointment, key string) (replay *models.Appointment, err error) {
	d := uc.d
	res := domain.Resource{Owner: domain.OwnerOf(ap), StaffID: ap.StaffID}

	release, err := d.Locker.Lock(ctx, res.Key(ap.AppointmentDate))
	if err != nil {
		return nil, err
	}
	defer release()

	err = d.Repo.WithinTx(ctx, func(ctx context.Context) error {
		if err := d.Repo.LockResource(ctx, res); err != nil {
			return domain.NotFound(err, "resource_not_found", "Salon or staff member not found")
		}

		if key != "" {
			prev, err := d.Repo.FindByIdempotencyKey(ctx, *ap.CustomerID, key)
			if err == nil {
				replay = prev
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if err := ensureFree(ctx, d.Repo, "book", ap); err != nil {
			return err
		}

		prior, err := d.Repo.HasPriorBooking(ctx, *ap.CustomerID, res.Owner)
		if err != nil {
			return err
		}
		ap.IsFirstVisit = !prior

		if err := d.Repo.CreateAppointment(ctx, ap); err != nil {
			return err
		}
		return d.Repo.IncrementCustomerBookings(ctx, *ap.CustomerID)
	})

	if err != nil && key != "" && httperr.IsUniqueViolation(err) {
		if prev, ferr := d.Repo.FindByIdempotencyKey(ctx, *ap.CustomerID, key); ferr == nil {
			return prev, nil
		}
	}
	return replay, conflictOnUnique(err)
}
