package ctdf

import "time"

// DatasetVersion summarises the last successful processing run of a mode
type DatasetVersion struct {
	RunID   string        `json:"runId"`
	Dataset string        `json:"dataset"`
	Mode    TransportType `json:"mode"`

	GeneratedAt time.Time `json:"generatedAt"`
	HorizonFrom string    `json:"horizonFrom"`
	HorizonTo   string    `json:"horizonTo"`

	Origins    int `json:"origins"`
	Pairs      int `json:"pairs"`
	Patterns   int `json:"patterns"`
	Departures int `json:"departures"`

	RouteIDs      []string `json:"routeIds"`
	RouteIDPrefix string   `json:"routeIdPrefix,omitempty"`
}
