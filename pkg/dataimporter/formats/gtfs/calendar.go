package gtfs

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/util"
)

// ServiceCalendar holds the active service ids for every day of a processing horizon.
// It is built once per run by ActiveServices and only read afterwards.
type ServiceCalendar struct {
	dates    []time.Time
	active   map[string]map[string]bool
	services map[string][]time.Time
}

func dateKey(date time.Time) string {
	return date.Format(DateFormat)
}

// ActiveServices resolves which service ids run on each civil day in [start, end].
// Weekday flags apply within a calendar row's inclusive date range, then calendar_dates
// exceptions for that exact day are applied on top: additions always insert, removals always delete.
func ActiveServices(calendars []Calendar, calendarDates []CalendarDate, start time.Time, end time.Time) *ServiceCalendar {
	location := start.Location()
	start = util.StartOfDay(start)
	end = util.StartOfDay(end.In(location))

	type calendarRange struct {
		calendar Calendar
		from     time.Time
		to       time.Time
	}

	ranges := make([]calendarRange, 0, len(calendars))
	for _, calendar := range calendars {
		from, to, err := calendar.DateRange(location)
		if err != nil {
			log.Warn().Str("service", calendar.ServiceID).Err(err).Msg("Skipping calendar with invalid dates")
			continue
		}
		ranges = append(ranges, calendarRange{calendar: calendar, from: from, to: to})
	}

	exceptions := map[string][]CalendarDate{}
	for _, calendarDate := range calendarDates {
		key := strings.TrimSpace(calendarDate.Date)
		if _, err := time.ParseInLocation(DateFormat, key, location); err != nil {
			log.Warn().Str("service", calendarDate.ServiceID).Str("date", calendarDate.Date).Msg("Skipping calendar date with invalid date")
			continue
		}
		exceptions[key] = append(exceptions[key], calendarDate)
	}

	serviceCalendar := &ServiceCalendar{
		active:   map[string]map[string]bool{},
		services: map[string][]time.Time{},
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := dateKey(day)
		active := map[string]bool{}

		for _, entry := range ranges {
			if day.Before(entry.from) || day.After(entry.to) {
				continue
			}
			if entry.calendar.RunsOn(day.Weekday()) {
				active[entry.calendar.ServiceID] = true
			}
		}

		for _, exception := range exceptions[key] {
			switch exception.Exception() {
			case ExceptionTypeAdded:
				active[exception.ServiceID] = true
			case ExceptionTypeRemoved:
				delete(active, exception.ServiceID)
			}
		}

		serviceCalendar.dates = append(serviceCalendar.dates, day)
		serviceCalendar.active[key] = active
		for serviceID := range active {
			serviceCalendar.services[serviceID] = append(serviceCalendar.services[serviceID], day)
		}
	}

	return serviceCalendar
}

func (s *ServiceCalendar) IsActive(date time.Time, serviceID string) bool {
	return s.active[dateKey(date)][serviceID]
}

// ActiveDates is every day in the horizon the service runs on, ascending
func (s *ServiceCalendar) ActiveDates(serviceID string) []time.Time {
	return s.services[serviceID]
}

// ActiveInRange reports whether the service runs on any day of the horizon, not just the first
func (s *ServiceCalendar) ActiveInRange(serviceID string) bool {
	return len(s.services[serviceID]) > 0
}

func (s *ServiceCalendar) Dates() []time.Time {
	return s.dates
}

// Services lists the active service ids of a day in sorted order
func (s *ServiceCalendar) Services(date time.Time) []string {
	services := make([]string, 0, len(s.active[dateKey(date)]))
	for serviceID := range s.active[dateKey(date)] {
		services = append(services, serviceID)
	}
	sort.Strings(services)

	return services
}
