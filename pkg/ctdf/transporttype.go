package ctdf

import "fmt"

type TransportType string

const (
	TransportTypeTrain TransportType = "train"
	TransportTypeFerry TransportType = "ferry"
)

// GTFS route_type codes as published by the SEQ operator
const (
	RouteTypeTrain = 2
	RouteTypeFerry = 4
)

const FerryRouteIDPrefix = "F"

func ParseTransportType(value string) (TransportType, error) {
	switch TransportType(value) {
	case TransportTypeTrain, TransportTypeFerry:
		return TransportType(value), nil
	default:
		return "", fmt.Errorf("unsupported transport type %q", value)
	}
}

func (t TransportType) RouteType() int {
	switch t {
	case TransportTypeTrain:
		return RouteTypeTrain
	case TransportTypeFerry:
		return RouteTypeFerry
	default:
		return -1
	}
}

// RouteIDPrefix is the route id convention a mode must also satisfy, empty when there is none
func (t TransportType) RouteIDPrefix() string {
	if t == TransportTypeFerry {
		return FerryRouteIDPrefix
	}

	return ""
}

// UsesStations reports whether platforms are collapsed into stations for this mode.
// Ferry terminals are kept as individual stops.
func (t TransportType) UsesStations() bool {
	return t == TransportTypeTrain
}
