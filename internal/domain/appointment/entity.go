package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves ap to the given status and stamps the matching audit time.
func Transition(ap *models.Appointment, to Status, now time.Time) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}

	ap.Status = string(to)
	switch to {
	case StatusConfirmed:
		ap.ConfirmedAt = &now
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}
	return nil
}

// ManualTransition is Transition for staff, owner and admin edits.
// Confirmed is only reached through ConfirmPayment.
func ManualTransition(ap *models.Appointment, to Status, now time.Time) error {
	if to == StatusConfirmed {
		return httperr.InvalidTransition("payment_required", "Appointments are confirmed by payment")
	}
	return Transition(ap, to, now)
}

func Cancel(ap *models.Appointment, now time.Time) error {
	return Transition(ap, StatusCancelled, now)
}

func Complete(ap *models.Appointment, now time.Time) error {
	return Transition(ap, StatusCompleted, now)
}

// CheckIn starts an approved appointment for a walk-in customer.
func CheckIn(ap *models.Appointment, now time.Time) error {
	if Status(ap.Status) != StatusApproved {
		return httperr.InvalidTransition("not_approved", "Only approved appointments can be checked in")
	}
	if err := Transition(ap, StatusInProgress, now); err != nil {
		return err
	}
	ap.CheckInTime = &now
	return nil
}

func ConfirmPayment(ap *models.Appointment, now time.Time) error {
	if ap.PaymentStatus == PaymentPaid {
		return httperr.Conflict("already_paid", "Payment already confirmed for this appointment")
	}
	if err := Transition(ap, StatusConfirmed, now); err != nil {
		return err
	}
	ap.PaymentStatus = PaymentPaid
	return nil
}

// Rate records the customer's review. It never mutates ap on failure.
func Rate(ap *models.Appointment, rating int, feedback string) error {
	if Status(ap.Status) != StatusCompleted {
		return httperr.InvalidTransition("not_completed", "Only completed appointments can be reviewed")
	}
	if ap.Rating != nil {
		return httperr.InvalidTransition("already_reviewed", "Appointment already reviewed")
	}
	if rating < 1 || rating > 5 {
		return httperr.Validation("invalid_rating", "Rating must be between 1 and 5")
	}

	r := rating
	ap.Rating = &r
	ap.Feedback = feedback
	return nil
}
