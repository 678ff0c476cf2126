package departures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

var (
	ErrOriginNotFound         = errors.New("origin not found")
	ErrDestinationUnreachable = errors.New("destination not reachable from origin")
)

// Store is the read side of the published origin datasets.
// A missing origin is reported as a nil dataset and a nil error.
type Store interface {
	GetOriginDataset(ctx context.Context, mode ctdf.TransportType, identifier string) (*ctdf.OriginDataset, error)
}

type TimeWindow struct {
	Hours int       `json:"hours" groups:"basic"`
	From  time.Time `json:"from" groups:"basic"`
	To    time.Time `json:"to" groups:"basic"`
}

type RouteQueryResult struct {
	Origin      *ctdf.Stop `json:"origin" groups:"basic"`
	Destination *ctdf.Stop `json:"destination" groups:"basic"`

	Departures      []*ctdf.DepartureRecord `json:"departures" groups:"basic"`
	TotalDepartures int                     `json:"totalDepartures" groups:"basic"`

	TimeWindow TimeWindow `json:"timeWindow" groups:"basic"`
}

// NormaliseIdentifier maps user input onto a published identifier.
// Train lookups go through the same slug function used when the stations were written.
func NormaliseIdentifier(mode ctdf.TransportType, identifier string) string {
	if mode.UsesStations() {
		return ctdf.StationSlug(identifier)
	}
	return strings.TrimSpace(identifier)
}

// QueryRoute returns the departures from origin to destination leaving within the next hours.
// now carries the location the window is evaluated in.
func QueryRoute(ctx context.Context, store Store, mode ctdf.TransportType, origin string, destination string, hours int, now time.Time) (*RouteQueryResult, error) {
	if err := ValidateWindow(hours); err != nil {
		return nil, err
	}

	originID := NormaliseIdentifier(mode, origin)
	destinationID := NormaliseIdentifier(mode, destination)
	if originID == "" {
		return nil, ErrOriginNotFound
	}

	dataset, err := store.GetOriginDataset(ctx, mode, originID)
	if err != nil {
		return nil, fmt.Errorf("load origin %s: %w", originID, err)
	}
	if dataset == nil {
		return nil, ErrOriginNotFound
	}

	route, exists := dataset.Routes[destinationID]
	if !exists || destinationID == originID {
		return nil, ErrDestinationUnreachable
	}

	departures := FilterWindow(route.Departures, now, hours, now.Location())

	return &RouteQueryResult{
		Origin:          dataset.Origin,
		Destination:     route.Destination,
		Departures:      departures,
		TotalDepartures: len(departures),
		TimeWindow: TimeWindow{
			Hours: hours,
			From:  now,
			To:    now.Add(time.Duration(hours) * time.Hour),
		},
	}, nil
}
