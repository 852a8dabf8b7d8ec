package appointment

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timeofday"
)

const DefaultSlotMinutes = 30

type AvailabilityInput struct {
	Owner    Owner
	StaffID  *uint
	Date     string
	Duration int
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BusinessHours is the opening window of a salon or freelancer. An empty
// WorkingDays list means open every day.
type BusinessHours struct {
	OpenTime    string
	CloseTime   string
	WorkingDays []time.Weekday
}

func HoursOfSalon(s *models.Salon) BusinessHours {
	return BusinessHours{
		OpenTime:    s.OpenTime,
		CloseTime:   s.CloseTime,
		WorkingDays: ParseWorkingDays(s.WorkingDays),
	}
}

func HoursOfFreelancer(f *models.Freelancer) BusinessHours {
	return BusinessHours{
		OpenTime:    f.OpenTime,
		CloseTime:   f.CloseTime,
		WorkingDays: ParseWorkingDays(f.WorkingDays),
	}
}

func (h BusinessHours) WorksOn(day time.Weekday) bool {
	return len(h.WorkingDays) == 0 || slices.Contains(h.WorkingDays, day)
}

// ParseWorkingDays accepts full or three-letter English day names.
// Unknown names are ignored.
func ParseWorkingDays(csv string) []time.Weekday {
	var days []time.Weekday
	for _, part := range strings.Split(csv, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if len(name) < 3 {
			continue
		}
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if name == full || name == full[:3] {
				if !slices.Contains(days, d) {
					days = append(days, d)
				}
				break
			}
		}
	}
	return days
}

func FormatWorkingDays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

// Slots yields every candidate start time for date, open to close in
// slotMinutes steps. Non-working days and malformed hours yield nothing.
func Slots(h BusinessHours, date string, slotMinutes int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if slotMinutes <= 0 {
			slotMinutes = DefaultSlotMinutes
		}

		day, err := timeofday.ParseDate(date, time.UTC)
		if err != nil || !h.WorksOn(day.Weekday()) {
			return
		}

		open, err := timeofday.ToMinutes(h.OpenTime)
		if err != nil {
			return
		}
		closing, err := timeofday.ToMinutes(h.CloseTime)
		if err != nil {
			return
		}

		for m := open; m < closing; m += slotMinutes {
			if !yield(timeofday.FromMinutes(m)) {
				return
			}
		}
	}
}

// FreeSlots keeps the slots where a booking of duration minutes fits
// before closing time without overlapping an occupying interval.
func FreeSlots(
	h BusinessHours,
	date string,
	slotMinutes int,
	duration int,
	res Resource,
	existing []Interval,
) []TimeSlot {
	if duration <= 0 {
		duration = DefaultDuration
	}
	closing, err := timeofday.ToMinutes(h.CloseTime)
	if err != nil {
		return nil
	}

	day, err := timeofday.NormalizeDate(date)
	if err != nil {
		return nil
	}

	out := []TimeSlot{}
	for slot := range Slots(h, day, slotMinutes) {
		start, _ := timeofday.ToMinutes(slot)
		end := start + duration
		if end > closing {
			break
		}

		c := Candidate{Resource: res, Date: day, Start: start, End: end}
		if HasConflict(c, existing) {
			continue
		}
		out = append(out, TimeSlot{Start: slot, End: timeofday.FromMinutes(end)})
	}
	return out
}
