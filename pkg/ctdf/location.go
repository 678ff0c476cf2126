package ctdf

type Location struct {
	Type        string    `json:"-" groups:"basic"`
	Coordinates []float64 `json:"coordinates" groups:"basic"`
}

func NewLocation(latitude float64, longitude float64) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (l *Location) Latitude() float64 {
	if l == nil || len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

func (l *Location) Longitude() float64 {
	if l == nil || len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

// Centroid averages the given points, nil when none are usable
func Centroid(locations []*Location) *Location {
	var latitude, longitude float64
	count := 0

	for _, location := range locations {
		if location == nil || len(location.Coordinates) < 2 {
			continue
		}

		latitude += location.Latitude()
		longitude += location.Longitude()
		count += 1
	}

	if count == 0 {
		return nil
	}

	return NewLocation(latitude/float64(count), longitude/float64(count))
}
