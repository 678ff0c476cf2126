package departures

import (
	"errors"
	"fmt"
	"time"

	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/formats/gtfs"
	"github.com/seqtransit/seqtransit/pkg/util"
)

const (
	MinWindowHours = 1
	MaxWindowHours = 168
)

// Late evening and early morning departures that already passed today are assumed to mean tomorrow
const (
	rolloverFromHour  = 20
	rolloverUntilHour = 4
)

var ErrInvalidWindow = errors.New("invalid time window")

func ValidateWindow(hours int) error {
	if hours < MinWindowHours || hours > MaxWindowHours {
		return fmt.Errorf("%w: hours must be between %d and %d, got %d", ErrInvalidWindow, MinWindowHours, MaxWindowHours, hours)
	}
	return nil
}

// FilterWindow keeps the departures leaving within [now, now+hours] in the given location.
// The result is a new slice in the original order, records with unreadable times are dropped.
func FilterWindow(records []*ctdf.DepartureRecord, now time.Time, hours int, location *time.Location) []*ctdf.DepartureRecord {
	if location == nil {
		location = now.Location()
	}
	now = now.In(location)
	end := now.Add(time.Duration(hours) * time.Hour)

	return util.Filter(records, func(record *ctdf.DepartureRecord) bool {
		departure, ok := ResolveDeparture(record, now)
		if !ok {
			return false
		}

		return !departure.Before(now) && !departure.After(end)
	})
}

// ResolveDeparture works out the instant a record departs relative to now.
// Records with a full timestamp use it directly, bare times of day are placed on today or tomorrow.
func ResolveDeparture(record *ctdf.DepartureRecord, now time.Time) (time.Time, bool) {
	if record == nil {
		return time.Time{}, false
	}

	if record.ScheduledDeparture != "" {
		departure, err := record.DepartureInstant()
		if err != nil {
			return time.Time{}, false
		}
		return departure.In(now.Location()), true
	}

	offset, err := gtfs.ParseTime(record.DepartureTime)
	if err != nil {
		return time.Time{}, false
	}

	departure := util.AddOffsetToDate(util.StartOfDay(now), offset)
	if departure.Before(now) {
		if now.Hour() < rolloverFromHour && departure.Hour() > rolloverUntilHour {
			return departure, true
		}
		departure = util.AddOffsetToDate(util.StartOfDay(now).AddDate(0, 0, 1), offset)
	}

	return departure, true
}
