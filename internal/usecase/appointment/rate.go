package appointment

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type RateInput struct {
	Actor         identity.Actor
	AppointmentID uint
	Rating        int
	Feedback      string
}

// RateAppointment stores the customer's one review of a completed visit.
type RateAppointment struct {
	d Deps
}

func NewRateAppointment(d Deps) *RateAppointment {
	return &RateAppointment{d: d.normalize()}
}

func (uc *RateAppointment) Execute(ctx context.Context, in RateInput) (*models.Appointment, error) {
	d := uc.d

	if !in.Actor.Is(identity.RoleCustomer) {
		return nil, httperr.Forbidden("customers_only", "Only the customer can review an appointment")
	}

	ap, err := loadAuthorized(ctx, d.Repo, in.Actor, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Rate(ap, in.Rating, strings.TrimSpace(in.Feedback)); err != nil {
		return nil, err
	}

	if err := d.Repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	d.audit(in.Actor, ap, "appointment_rated", map[string]any{"rating": in.Rating})

	return ap, nil
}
