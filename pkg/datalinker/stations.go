package datalinker

import (
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/formats/gtfs"
)

// StationIndex groups train platforms into stations by their normalised name
type StationIndex struct {
	ByPlatform map[string]*ctdf.Station
	BySlug     map[string]*ctdf.Station

	order     []string
	locations map[string][]*ctdf.Location
}

func NewStationIndex() *StationIndex {
	return &StationIndex{
		ByPlatform: map[string]*ctdf.Station{},
		BySlug:     map[string]*ctdf.Station{},
		locations:  map[string][]*ctdf.Location{},
	}
}

// LinkStations builds the station index for a set of platform stops.
// Every stop ends up as a platform of exactly one station.
func LinkStations(stops []gtfs.Stop) *StationIndex {
	index := NewStationIndex()
	for _, stop := range stops {
		index.Upsert(stop)
	}

	log.Info().Int("platforms", len(index.ByPlatform)).Int("stations", len(index.BySlug)).Msg("Linked platforms to stations")

	return index
}

// Upsert adds a stop as a platform of the station matching its name, creating the station if needed
func (s *StationIndex) Upsert(stop gtfs.Stop) *ctdf.Station {
	if station, exists := s.ByPlatform[stop.ID]; exists {
		return station
	}

	name, platformCode := ctdf.ParseStationName(stop.Name)
	if name == "" {
		name = stop.Name
	}
	if platformCode == "" {
		platformCode = stop.PlatformCode
	}

	slug := ctdf.StationSlug(name)
	if slug == "" {
		slug = ctdf.StationSlug(stop.ID)
	}

	station, exists := s.BySlug[slug]
	if !exists {
		station = &ctdf.Station{
			Identifier: slug,
			Name:       name,
		}
		s.BySlug[slug] = station
		s.order = append(s.order, slug)
	} else if station.Name != name {
		log.Warn().
			Str("slug", slug).
			Str("station", station.Name).
			Str("name", name).
			Str("stop", stop.ID).
			Msg("Station names collide on slug, merging")
	}

	station.Platforms = append(station.Platforms, ctdf.Platform{
		StopID: stop.ID,
		Name:   stop.Name,
		Code:   platformCode,
	})
	s.ByPlatform[stop.ID] = station

	if location := stop.Location(); location != nil {
		s.locations[slug] = append(s.locations[slug], location)
		station.Location = ctdf.Centroid(s.locations[slug])
	}

	return station
}

// Stations returns every station in the order its first platform was seen
func (s *StationIndex) Stations() []*ctdf.Station {
	stations := make([]*ctdf.Station, 0, len(s.order))
	for _, slug := range s.order {
		stations = append(stations, s.BySlug[slug])
	}
	return stations
}

// Station looks up by stop id, nil when the stop is not a known platform
func (s *StationIndex) Station(stopID string) *ctdf.Station {
	if s == nil {
		return nil
	}
	return s.ByPlatform[stopID]
}
