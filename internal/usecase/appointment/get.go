package appointment

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type GetAppointment struct {
	d Deps
}

func NewGetAppointment(d Deps) *GetAppointment {
	return &GetAppointment{d: d.normalize()}
}

func (uc *GetAppointment) Execute(ctx context.Context, actor identity.Actor, id uint) (*models.Appointment, error) {
	return loadAuthorized(ctx, uc.d.Repo, actor, id)
}
