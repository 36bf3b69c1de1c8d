package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

var defaultLocation = time.UTC

// Clock returns the current time. Tests swap it for a fixed instant.
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// ResolveLocation returns the named location with UTC fallback.
// The bool reports whether the fallback was used.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return defaultLocation, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return defaultLocation, true
	}
	return loc, false
}

// LocalZoneName returns the IANA name of the host zone, or UTC when the host only reports "Local"
func LocalZoneName() string {
	name := time.Local.String()
	if name == "" || name == "Local" {
		return "UTC"
	}
	return name
}

// ParseDateTime parses a datetime in either RFC3339 (with explicit offset) or local layouts in the provided timezone.
func ParseDateTime(value, timezone string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, fmt.Errorf("time value is required")
	}

	// An explicit offset wins over the timezone argument.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}

	loc, fallback := ResolveLocation(timezone)

	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, fallback, nil
		}
	}

	return time.Time{}, fallback, fmt.Errorf("unable to parse time: %s", value)
}

// FormatHuman renders a time for confirmation messages
func FormatHuman(t time.Time) string {
	return t.Format("Mon Jan 2 2006, 3:04 PM MST")
}
