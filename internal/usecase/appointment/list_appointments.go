package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

// ListAppointments is the staff and owner calendar view. Staff only see
// their own appointments.
type ListAppointments struct {
	d Deps
}

func NewListAppointments(d Deps) *ListAppointments {
	return &ListAppointments{d: d.normalize()}
}

// ByDate lists one civil day.
func (uc *ListAppointments) ByDate(
	ctx context.Context,
	actor identity.Actor,
	date string,
) ([]dto.AppointmentListDTO, error) {
	day, err := timeofday.NormalizeDate(date)
	if err != nil {
		return nil, httperr.Validation("invalid_date", "Date must be YYYY-MM-DD")
	}
	next, _ := timeofday.ParseDate(day, time.UTC)
	return uc.period(ctx, actor, day, timeofday.DateOf(next.AddDate(0, 0, 1)))
}

// ByMonth lists a calendar month.
func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	actor identity.Actor,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {
	if month < 1 || month > 12 || year < 1970 {
		return nil, httperr.Validation("invalid_month", "Year and month are invalid")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return uc.period(ctx, actor, timeofday.DateOf(start), timeofday.DateOf(end))
}

func (uc *ListAppointments) period(
	ctx context.Context,
	actor identity.Actor,
	from, to string,
) ([]dto.AppointmentListDTO, error) {
	d := uc.d

	var (
		owner   domain.Owner
		staffID *uint
	)
	switch actor.Role {
	case identity.RoleStaff:
		st, o, err := staffContext(ctx, d.Repo, actor)
		if err != nil {
			return nil, err
		}
		owner, staffID = o, &st.ID

	case identity.RoleOwner, identity.RoleAdmin:
		o, err := actorOwner(actor)
		if err != nil {
			return nil, err
		}
		target, err := domain.LoadTarget(ctx, d.Repo, o)
		if err != nil {
			return nil, err
		}
		if err := ensureOwns(actor, target); err != nil {
			return nil, err
		}
		owner = o

	default:
		return nil, httperr.Forbidden("staff_only", "Only staff and owners can view the calendar")
	}

	apps, err := d.Repo.ListForPeriod(ctx, owner, staffID, from, to)
	if err != nil {
		return nil, err
	}
	return dto.AppointmentList(apps), nil
}
