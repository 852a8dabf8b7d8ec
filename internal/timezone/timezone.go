package timezone

import (
	"sync/atomic"
	"time"
)

const DefaultTimezone = "Asia/Kolkata"

var fallback atomic.Value

// SetDefault overrides the zone used when an owner has none configured.
func SetDefault(tz string) {
	if IsValid(tz) {
		fallback.Store(tz)
	}
}

func defaultName() string {
	if v, ok := fallback.Load().(string); ok {
		return v
	}
	return DefaultTimezone
}

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(defaultName())
	if err != nil {
		return time.UTC
	}
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}
