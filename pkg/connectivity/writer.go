package connectivity

import (
	"sort"
	"time"

	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

type WriterOptions struct {
	Mode       ctdf.TransportType
	DataSource *ctdf.DataSource
	Now        time.Time

	// Stable sort every departure list chronologically, used for ferries
	SortByDeparture bool
}

// BuildOriginDatasets regroups generated departures by origin.
// Origins without departures are left out, output order is the first appearance of each origin.
func BuildOriginDatasets(result *Result, options WriterOptions) []*ctdf.OriginDataset {
	var datasets []*ctdf.OriginDataset
	byOrigin := map[string]*ctdf.OriginDataset{}

	for _, pair := range result.Pairs {
		departures := result.Departures[pair]
		if len(departures) == 0 {
			continue
		}

		dataset, exists := byOrigin[pair.Origin]
		if !exists {
			dataset = &ctdf.OriginDataset{
				PrimaryIdentifier: pair.Origin,
				Mode:              options.Mode,
				Origin:            identity(result, pair.Origin),
				Routes:            map[string]*ctdf.RouteDestination{},
				CreationDateTime:  options.Now,
				DataSource:        options.DataSource,
			}
			byOrigin[pair.Origin] = dataset
			datasets = append(datasets, dataset)
		}

		routeDepartures := make([]*ctdf.DepartureRecord, len(departures))
		copy(routeDepartures, departures)
		if options.SortByDeparture {
			sortByDeparture(routeDepartures)
		}

		dataset.Routes[pair.Destination] = &ctdf.RouteDestination{
			Destination: identity(result, pair.Destination),
			Departures:  routeDepartures,
		}
	}

	return datasets
}

func identity(result *Result, identifier string) *ctdf.Stop {
	if stop, exists := result.Identities[identifier]; exists {
		return stop
	}
	return &ctdf.Stop{Identifier: identifier, Name: identifier}
}

// Records without a timestamp compare on their time of day
func sortByDeparture(departures []*ctdf.DepartureRecord) {
	sort.SliceStable(departures, func(i, j int) bool {
		left, leftErr := departures[i].DepartureInstant()
		right, rightErr := departures[j].DepartureInstant()
		if leftErr != nil || rightErr != nil || left.IsZero() || right.IsZero() {
			return departures[i].DepartureTime < departures[j].DepartureTime
		}
		return left.Before(right)
	})
}
