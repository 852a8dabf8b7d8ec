package schedule

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Page struct {
	Items []models.ScheduleRequest `json:"items"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

type ListRequests struct {
	d Deps
}

func NewListRequests(d Deps) *ListRequests {
	return &ListRequests{d: d.normalize()}
}

// Mine pages through requests the staff member raised or is the target of.
func (uc *ListRequests) Mine(ctx context.Context, actor identity.Actor, status string, page, limit int) (*Page, error) {
	if !actor.Is(identity.RoleStaff) {
		return nil, httperr.Forbidden("staff_only", "Only staff members have schedule requests")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	items, total, err := uc.d.Requests.ListByStaff(ctx, actor.ID, status, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ScheduleRequest{}
	}
	return &Page{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Actionable lists the requests waiting on the owner.
func (uc *ListRequests) Actionable(ctx context.Context, actor identity.Actor) ([]models.ScheduleRequest, error) {
	if actor.SalonID == 0 {
		return nil, httperr.Forbidden("no_business", "No salon linked to this account")
	}
	salon, err := uc.d.ownedSalon(ctx, actor, actor.SalonID)
	if err != nil {
		return nil, err
	}
	items, err := uc.d.Requests.ListActionable(ctx, salon.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ScheduleRequest{}
	}
	return items, nil
}
