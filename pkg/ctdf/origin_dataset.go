package ctdf

import "time"

// OriginDataset is the published document for one origin stop or station.
// Each processing run replaces it wholesale.
type OriginDataset struct {
	PrimaryIdentifier string        `json:"primaryIdentifier" groups:"basic"`
	Mode              TransportType `json:"mode" groups:"basic"`

	Origin *Stop `json:"origin" groups:"basic"`

	// Keyed by destination identifier
	Routes map[string]*RouteDestination `json:"routes" groups:"basic"`

	CreationDateTime time.Time   `json:"creationDateTime" groups:"detailed"`
	DataSource       *DataSource `json:"-" groups:"internal"`
}

type RouteDestination struct {
	Destination *Stop              `json:"destination" groups:"basic"`
	Departures  []*DepartureRecord `json:"departures" groups:"basic"`
}

func (o *OriginDataset) DepartureCount() int {
	count := 0
	for _, route := range o.Routes {
		count += len(route.Departures)
	}
	return count
}
