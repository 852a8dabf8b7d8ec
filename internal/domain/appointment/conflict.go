package appointment

import (
	"fmt"
	"slices"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

// Interval is the time an existing appointment occupies.
type Interval struct {
	AppointmentID uint
	Owner         Owner
	StaffID       *uint
	Date          string
	Start         int
	End           int
	Status        Status
	Reason        string
}

// Candidate is a proposed placement checked against existing intervals.
type Candidate struct {
	Resource Resource
	Date     string
	Start    int
	End      int

	// Appointments being moved are ignored.
	Exclude []uint
}

func IntervalOf(ap *models.Appointment) Interval {
	return Interval{
		AppointmentID: ap.ID,
		Owner:         OwnerOf(ap),
		StaffID:       ap.StaffID,
		Date:          ap.AppointmentDate,
		Start:         ap.StartMinutes,
		End:           ap.EndMinutes,
		Status:        Status(ap.Status),
		Reason:        ap.BlockReason,
	}
}

func IntervalsOf(aps []models.Appointment) []Interval {
	out := make([]Interval, 0, len(aps))
	for i := range aps {
		out = append(out, IntervalOf(&aps[i]))
	}
	return out
}

func (c Candidate) sharesResource(iv Interval) bool {
	if c.Resource.StaffID != nil {
		return iv.StaffID != nil && *iv.StaffID == *c.Resource.StaffID
	}
	return iv.Owner == c.Resource.Owner
}

// FindConflict returns the first occupying interval the candidate overlaps.
// Intervals that only touch at an endpoint do not conflict.
func FindConflict(c Candidate, existing []Interval) (Interval, bool) {
	for _, iv := range existing {
		if iv.Date != c.Date || !iv.Status.Occupying() {
			continue
		}
		if slices.Contains(c.Exclude, iv.AppointmentID) {
			continue
		}
		if !c.sharesResource(iv) {
			continue
		}
		if c.Start < iv.End && iv.Start < c.End {
			return iv, true
		}
	}
	return Interval{}, false
}

func HasConflict(c Candidate, existing []Interval) bool {
	_, found := FindConflict(c, existing)
	return found
}

// ConflictError describes a clash, naming blocked staff time explicitly.
func ConflictError(iv Interval) error {
	if iv.Status == StatusStaffBlocked {
		reason := iv.Reason
		if reason == "" {
			reason = "Blocked"
		}
		return httperr.Conflict(
			"staff_unavailable",
			fmt.Sprintf(
				"Staff member is unavailable from %s to %s (%s)",
				timeofday.FromMinutes(iv.Start),
				timeofday.FromMinutes(iv.End),
				reason,
			),
		)
	}
	return httperr.Conflict("time_conflict", "Time slot not available. Please choose a different time.")
}

// EnsureFree is FindConflict turned into an error.
func EnsureFree(c Candidate, existing []Interval) error {
	if iv, found := FindConflict(c, existing); found {
		return ConflictError(iv)
	}
	return nil
}
