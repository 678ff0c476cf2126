package ctdf

import "time"

// DepartureRecord is one trip occurrence travelling from an origin to a destination.
// Records are created once per processing run and never mutated afterwards.
type DepartureRecord struct {
	TripID    string `json:"tripId" groups:"basic"`
	RouteID   string `json:"routeId" groups:"basic"`
	RouteName string `json:"routeName" groups:"basic"`
	Headsign  string `json:"headsign" groups:"basic"`
	Direction string `json:"direction,omitempty" groups:"detailed"`
	ServiceID string `json:"serviceId" groups:"basic"`

	// ServiceDate is the calendar day the trip runs on (YYYY-MM-DD)
	ServiceDate string `json:"serviceDate,omitempty" groups:"detailed"`

	// Full local timestamps (RFC3339). When empty the time-of-day fields are authoritative.
	ScheduledDeparture string `json:"scheduledDeparture,omitempty" groups:"basic"`
	ScheduledArrival   string `json:"scheduledArrival,omitempty" groups:"basic"`

	// GTFS time-of-day values as published, may exceed 24:00:00
	DepartureTime string `json:"departureTime" groups:"basic"`
	ArrivalTime   string `json:"arrivalTime" groups:"basic"`

	OriginPlatform      *Platform `json:"originPlatform,omitempty" groups:"basic"`
	DestinationPlatform *Platform `json:"destinationPlatform,omitempty" groups:"basic"`
}

// DepartureInstant returns the parsed scheduled departure, zero time when only a time-of-day is known
func (d *DepartureRecord) DepartureInstant() (time.Time, error) {
	if d.ScheduledDeparture == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339, d.ScheduledDeparture)
}

// Direction values derived from GTFS direction_id
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)
