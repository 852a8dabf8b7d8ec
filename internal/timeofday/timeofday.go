// Package timeofday converts between "HH:MM" wall-clock strings, minutes
// since midnight and civil dates anchored to a location.
package timeofday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	MinutesPerDay  = 24 * 60
	dateTimeLayout = "2006-01-02 15:04"
)

var ErrInvalidFormat = errors.New("invalid time of day format")

// ToMinutes parses "HH:MM". An empty string is treated as midnight so that
// legacy rows without a time keep sorting.
func ToMinutes(tod string) (int, error) {
	tod = strings.TrimSpace(tod)
	if tod == "" {
		return 0, nil
	}

	h, m, ok := strings.Cut(tod, ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, tod)
	}

	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, tod)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, tod)
	}

	return hour*60 + minute, nil
}

// FromMinutes is the inverse of ToMinutes. Values wrap around midnight.
func FromMinutes(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Combine joins a civil date and a time of day into one instant in loc.
// A date that already carries a time component ("2024-05-01T10:00...")
// is truncated to its date part before combining.
func Combine(date, tod string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	day, err := NormalizeDate(date)
	if err != nil {
		return time.Time{}, err
	}

	minutes, err := ToMinutes(tod)
	if err != nil {
		return time.Time{}, err
	}

	return time.ParseInLocation(dateTimeLayout, day+" "+FromMinutes(minutes), loc)
}

// NormalizeDate validates a civil date and strips any trailing time part.
func NormalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if i := strings.IndexAny(date, "T "); i >= 0 {
		date = date[:i]
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", fmt.Errorf("%w: date %q", ErrInvalidFormat, date)
	}
	return date, nil
}

// ParseDate returns midnight of the civil date in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	day, err := NormalizeDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, day, loc)
}

// DateOf formats the civil date of t in its own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current civil date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// IsBefore reports whether civil date a is strictly earlier than b.
// Both must be in DateLayout.
func IsBefore(a, b string) bool {
	ta, errA := time.Parse(DateLayout, a)
	tb, errB := time.Parse(DateLayout, b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.Before(tb)
}
