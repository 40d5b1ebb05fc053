package timeutil

import (
	"time"
)

// DisplayLayout is how the CLI prints timestamps
const DisplayLayout = "2006-01-02 15:04:05 MST"

// Location resolves an IANA timezone name. Empty means the local zone;
// an invalid name falls back to UTC.
func Location(timezone string) *time.Location {
	if timezone == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		// If timezone is invalid, fallback to UTC
		return time.UTC
	}
	return loc
}

// FormatIn formats t in the given timezone using DisplayLayout
func FormatIn(t time.Time, timezone string) string {
	return t.In(Location(timezone)).Format(DisplayLayout)
}
