package gtfs

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/util"
)

// FilterByMode returns a new schedule restricted to the routes, trips and stop_times of one mode.
// Stops and calendar tables are shared with the input; none of the input slices are modified.
func FilterByMode(schedule *Schedule, mode ctdf.TransportType) (*Schedule, error) {
	routeType := mode.RouteType()
	if routeType < 0 {
		return &Schedule{}, fmt.Errorf("unsupported transport type %q", mode)
	}
	routeIDPrefix := mode.RouteIDPrefix()

	filtered := &Schedule{
		Stops:         schedule.Stops,
		Calendars:     schedule.Calendars,
		CalendarDates: schedule.CalendarDates,
	}

	routeIDs := map[string]bool{}
	for _, route := range schedule.Routes {
		if value, err := route.RouteType(); err != nil || value != routeType {
			continue
		}
		if routeIDPrefix != "" && !strings.HasPrefix(route.ID, routeIDPrefix) {
			continue
		}

		routeIDs[route.ID] = true
		filtered.Routes = append(filtered.Routes, route)
	}

	tripIDs := map[string]bool{}
	for _, trip := range schedule.Trips {
		if !routeIDs[trip.RouteID] {
			continue
		}

		tripIDs[trip.ID] = true
		filtered.Trips = append(filtered.Trips, trip)
	}

	for _, stopTime := range schedule.StopTimes {
		if tripIDs[stopTime.TripID] {
			filtered.StopTimes = append(filtered.StopTimes, stopTime)
		}
	}

	log.Info().
		Str("mode", string(mode)).
		Int("routes", len(filtered.Routes)).
		Int("trips", len(filtered.Trips)).
		Int("stoptimes", len(filtered.StopTimes)).
		Msg("Filtered schedule by mode")

	return filtered, nil
}

// RouteIDs lists the schedule's distinct route ids in file order
func (gtfs *Schedule) RouteIDs() []string {
	routeIDs := make([]string, 0, len(gtfs.Routes))
	for _, route := range gtfs.Routes {
		routeIDs = append(routeIDs, route.ID)
	}
	return util.RemoveDuplicateStrings(routeIDs, nil)
}
