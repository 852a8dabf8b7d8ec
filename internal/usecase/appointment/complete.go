package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type CompleteAppointment struct {
	d Deps
}

func NewCompleteAppointment(d Deps) *CompleteAppointment {
	return &CompleteAppointment{d: d.normalize()}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	actor identity.Actor,
	appointmentID uint,
) (*models.Appointment, error) {
	d := uc.d

	if actor.Is(identity.RoleCustomer) {
		return nil, httperr.Forbidden("staff_only", "Only staff can complete appointments")
	}

	ap, err := loadAuthorized(ctx, d.Repo, actor, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.Complete(ap, d.Now()); err != nil {
		return nil, err
	}

	if err := d.Repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	d.audit(actor, ap, "appointment_completed", nil)

	return ap, nil
}
