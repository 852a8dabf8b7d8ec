package schedule

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
)

// PeerResponse is the target staff member's answer to a shift swap.
type PeerResponse struct {
	d Deps
}

func NewPeerResponse(d Deps) *PeerResponse {
	return &PeerResponse{d: d.normalize()}
}

func (uc *PeerResponse) Approve(ctx context.Context, actor identity.Actor, requestID uint) (*models.ScheduleRequest, error) {
	return uc.respond(ctx, actor, requestID, true, "")
}

func (uc *PeerResponse) Reject(ctx context.Context, actor identity.Actor, requestID uint, reason string) (*models.ScheduleRequest, error) {
	return uc.respond(ctx, actor, requestID, false, reason)
}

func (uc *PeerResponse) respond(
	ctx context.Context,
	actor identity.Actor,
	requestID uint,
	approve bool,
	reason string,
) (*models.ScheduleRequest, error) {
	d := uc.d

	if !actor.Is(identity.RoleStaff) {
		return nil, httperr.Forbidden("staff_only", "Only staff members can respond to a swap")
	}
	r, err := d.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := d.Now()
	if approve {
		err = domain.PeerApprove(r, actor.ID, now)
	} else {
		err = domain.PeerReject(r, actor.ID, reason, now)
	}
	if err != nil {
		return nil, err
	}

	if err := d.Requests.UpdateRequest(ctx, r); err != nil {
		return nil, err
	}

	verdict := "rejected"
	if approve {
		verdict = "accepted"
	}
	d.audit(actor, r, "shift_swap_peer_"+verdict, nil)
	d.notifyStaff(ctx, r.StaffID, notify.KindSwapPeerResponded, "Shift swap "+verdict,
		fmt.Sprintf("Your shift swap request was %s by your colleague.", verdict), r)

	if approve {
		if salon, err := d.Appointments.GetSalon(ctx, r.SalonID); err == nil {
			d.notifyOwner(ctx, salon, notify.KindSwapPeerResponded, "Shift swap awaiting approval",
				"A shift swap was accepted by both staff members and needs your approval.", r)
		}
	}

	return r, nil
}
