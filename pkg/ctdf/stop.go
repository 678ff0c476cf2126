package ctdf

type StopType string

const (
	StopTypeStop    StopType = "stop"
	StopTypeStation StopType = "station"
)

// Stop is the published identity of an origin or destination.
// At station granularity Identifier is the station slug and Platforms lists the member stop ids.
type Stop struct {
	Identifier string   `json:"identifier" groups:"basic"`
	Name       string   `json:"name" groups:"basic"`
	Type       StopType `json:"type" groups:"basic"`

	Location *Location `json:"location,omitempty" groups:"basic"`

	Platforms []string `json:"platforms,omitempty" groups:"detailed"`
}
