package schedule

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

type RequestLeave struct {
	d Deps
}

func NewRequestLeave(d Deps) *RequestLeave {
	return &RequestLeave{d: d.normalize()}
}

func (uc *RequestLeave) Execute(ctx context.Context, actor identity.Actor, in domain.Leave) (*models.ScheduleRequest, error) {
	d := uc.d

	st, salon, err := d.requester(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.StartDate, _ = timeofday.NormalizeDate(in.StartDate)
	in.EndDate, _ = timeofday.NormalizeDate(in.EndDate)

	r := domain.New(salon.ID, st.ID, in)
	if err := d.Requests.CreateRequest(ctx, r); err != nil {
		return nil, err
	}

	d.audit(actor, r, "leave_requested", map[string]any{
		"start": in.StartDate,
		"end":   in.EndDate,
	})
	d.notifyOwner(ctx, salon, notify.KindLeaveRequested, "Leave requested",
		fmt.Sprintf("%s requested leave from %s to %s: %s", st.Name, in.StartDate, in.EndDate, in.Reason), r)

	return r, nil
}
