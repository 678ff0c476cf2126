package util

import (
	"time"
)

// StartOfDay returns local midnight of the civil day t falls on
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddOffsetToDate places an offset from the start of the service day onto a calendar date.
// Offsets of 24 hours or more land on the following day(s), which is how GTFS expresses post-midnight service.
func AddOffsetToDate(date time.Time, offset time.Duration) time.Time {
	seconds := int(offset / time.Second)

	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, seconds, 0, date.Location())
}
