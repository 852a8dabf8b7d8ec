package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// Target is the salon or freelancer side of a booking, flattened so the
// use cases do not branch on the owner kind.
type Target struct {
	Owner       Owner
	Name        string
	Email       string
	Phone       string
	OwnerUserID uint
	Timezone    string
	Hours       BusinessHours

	// Zero means "use the configured default".
	NoticeHours int

	bookable error
}

func LoadTarget(ctx context.Context, repo Repository, owner Owner) (*Target, error) {
	switch owner.Kind {
	case OwnerSalon:
		s, err := repo.GetSalon(ctx, owner.ID)
		if err != nil {
			return nil, NotFound(err, "salon_not_found", "Salon not found")
		}
		t := &Target{
			Owner:       owner,
			Name:        s.Name,
			Email:       s.Email,
			Phone:       s.Phone,
			OwnerUserID: s.OwnerID,
			Timezone:    s.Timezone,
			Hours:       HoursOfSalon(s),
			NoticeHours: s.CancellationNoticeHours,
		}
		if !s.Active {
			t.bookable = httperr.Forbidden("salon_inactive", "Salon is not accepting bookings")
		}
		return t, nil

	case OwnerFreelancer:
		f, err := repo.GetFreelancer(ctx, owner.ID)
		if err != nil {
			return nil, NotFound(err, "freelancer_not_found", "Freelancer not found")
		}
		t := &Target{
			Owner:       owner,
			Name:        f.Name,
			Email:       f.Email,
			Phone:       f.Phone,
			OwnerUserID: f.UserID,
			Timezone:    f.Timezone,
			Hours:       HoursOfFreelancer(f),
		}
		if f.ApprovalStatus != models.FreelancerApproved {
			t.bookable = httperr.Forbidden("freelancer_not_approved", "Freelancer is not approved for bookings")
		}
		return t, nil
	}

	return nil, httperr.Validation("invalid_target", "Exactly one of salon or freelancer is required")
}

// Bookable reports why new bookings are refused, if they are.
func (t *Target) Bookable() error { return t.bookable }

func (t *Target) Location() *time.Location {
	return timezone.Location(t.Timezone)
}

// Today is the current civil date at the target.
func (t *Target) Today(now time.Time) string {
	return timeofday.Today(now, t.Location())
}

// Place writes the normalized date and time fields of ap for a booking of
// duration minutes starting at tod on date, in loc.
func Place(ap *models.Appointment, date, tod string, duration int, loc *time.Location) error {
	day, err := timeofday.NormalizeDate(date)
	if err != nil {
		return httperr.Validation("invalid_date", "Date must be YYYY-MM-DD")
	}
	if tod == "" {
		return httperr.Validation("invalid_time", "Time is required")
	}
	start, err := timeofday.ToMinutes(tod)
	if err != nil {
		return httperr.Validation("invalid_time", "Time must be HH:MM")
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	end := start + duration
	if end > timeofday.MinutesPerDay {
		return httperr.Validation("crosses_midnight", "Appointment must end on the same day")
	}

	startsAt, err := timeofday.Combine(day, tod, loc)
	if err != nil {
		return httperr.Validation("invalid_time", "Time must be HH:MM")
	}

	ap.AppointmentDate = day
	ap.AppointmentTime = timeofday.FromMinutes(start)
	ap.EstimatedDuration = duration
	ap.EstimatedEndTime = timeofday.FromMinutes(end)
	ap.StartMinutes = start
	ap.EndMinutes = end
	ap.StartsAt = startsAt
	return nil
}

// CandidateFor is the placement of ap as a conflict check candidate,
// ignoring ap itself.
func CandidateFor(ap *models.Appointment) Candidate {
	c := Candidate{
		Resource: Resource{Owner: OwnerOf(ap), StaffID: ap.StaffID},
		Date:     ap.AppointmentDate,
		Start:    ap.StartMinutes,
		End:      ap.EndMinutes,
	}
	if ap.ID != 0 {
		c.Exclude = []uint{ap.ID}
	}
	return c
}

// Categories lists the service categories booked on ap.
func Categories(ap *models.Appointment) []string {
	return Quote{Lines: ap.Services}.Categories()
}

// CheckPlacement runs the conflict detector for ap against the stored
// occupying intervals of its owner and date. Callers hold the resource lock.
func CheckPlacement(ctx context.Context, repo Repository, ap *models.Appointment, exclude ...uint) error {
	existing, err := repo.ListOccupying(ctx, OwnerOf(ap), ap.AppointmentDate)
	if err != nil {
		return err
	}
	c := CandidateFor(ap)
	c.Exclude = append(c.Exclude, exclude...)
	return EnsureFree(c, IntervalsOf(existing))
}
