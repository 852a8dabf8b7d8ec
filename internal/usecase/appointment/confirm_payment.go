package appointment

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/revenue"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

type ConfirmPaymentInput struct {
	Actor         identity.Actor
	AppointmentID uint
	OrderID       string
	PaymentID     string
	Signature     string
}

type ConfirmPayment struct {
	d Deps
}

func NewConfirmPayment(d Deps) *ConfirmPayment {
	return &ConfirmPayment{d: d.normalize()}
}

func (uc *ConfirmPayment) Execute(ctx context.Context, in ConfirmPaymentInput) (*models.Appointment, error) {
	d := uc.d

	if d.Payments == nil {
		return nil, httperr.New(httperr.KindFatal, "payment_unavailable", "Payment verification is not configured")
	}
	if strings.TrimSpace(in.OrderID) == "" || strings.TrimSpace(in.PaymentID) == "" {
		return nil, httperr.Validation("missing_fields", "Order and payment ids are required")
	}

	ap, err := loadAuthorized(ctx, d.Repo, in.Actor, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	ok, err := d.Payments.VerifySignature(ctx, in.OrderID, in.PaymentID, in.Signature)
	if err != nil {
		d.Log.Error().Err(err).Uint("appointment_id", ap.ID).Msg("payment verification failed")
		return nil, httperr.New(httperr.KindFatal, "payment_verification_failed", "Could not verify the payment")
	}
	if !ok {
		return nil, httperr.Validation("invalid_signature", "Payment verification failed")
	}

	if err := domain.ConfirmPayment(ap, d.Now()); err != nil {
		return nil, err
	}
	ap.PaymentOrderID = in.OrderID

	if err := d.Repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// One sale per line; the core never reads them back.
	if d.Sales != nil {
		for i, amounts := range revenue.Split(ap) {
			if err := d.Sales.RecordSale(ctx, ap, ap.Services[i], amounts); err != nil {
				d.Log.Error().Err(err).Uint("appointment_id", ap.ID).Str("line", ap.Services[i].Name).Msg("record sale failed")
			}
		}
	}

	d.audit(in.Actor, ap, "payment_confirmed", map[string]any{
		"order_id":   in.OrderID,
		"payment_id": in.PaymentID,
	})
	d.notifyStaff(ctx, ap, notify.KindAppointmentUpdated, "Payment received",
		"The booking on "+when(ap)+" has been paid.")

	return ap, nil
}
