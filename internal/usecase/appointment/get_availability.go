package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

type GetAvailability struct {
	d Deps
}

func NewGetAvailability(d Deps) *GetAvailability {
	return &GetAvailability{d: d.normalize()}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {
	d := uc.d

	target, err := domain.LoadTarget(ctx, d.Repo, in.Owner)
	if err != nil {
		return nil, err
	}
	if err := target.Bookable(); err != nil {
		return nil, err
	}

	day, err := timeofday.NormalizeDate(in.Date)
	if err != nil {
		return nil, httperr.Validation("invalid_date", "Date must be YYYY-MM-DD")
	}

	if in.StaffID != nil {
		st, err := d.Repo.GetStaff(ctx, *in.StaffID)
		if err != nil {
			return nil, domain.NotFound(err, "staff_not_found", "Staff member not found")
		}
		if err := checkStaff(st, in.Owner, nil); err != nil {
			return nil, err
		}
	}

	now := d.Now()
	today := target.Today(now)
	if timeofday.IsBefore(day, today) {
		return []domain.TimeSlot{}, nil
	}

	existing, err := d.Repo.ListOccupying(ctx, in.Owner, day)
	if err != nil {
		return nil, err
	}

	res := domain.Resource{Owner: in.Owner, StaffID: in.StaffID}
	slots := domain.FreeSlots(target.Hours, day, d.SlotMinutes, in.Duration, res, domain.IntervalsOf(existing))

	if day != today {
		return slots, nil
	}

	// Drop what has already started.
	local := now.In(target.Location())
	current := local.Hour()*60 + local.Minute()
	out := slots[:0]
	for _, s := range slots {
		if m, _ := timeofday.ToMinutes(s.Start); m > current {
			out = append(out, s)
		}
	}
	return out, nil
}
