package connectivity

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/formats/gtfs"
	"github.com/seqtransit/seqtransit/pkg/datalinker"
	"github.com/seqtransit/seqtransit/pkg/util"
	"golang.org/x/exp/slices"
)

type Pair struct {
	Origin      string
	Destination string
}

// Generator expands every active trip of a single-mode schedule into directed departure records.
// When Stations is nil the generator works at stop granularity.
type Generator struct {
	Schedule *gtfs.Schedule
	Services *gtfs.ServiceCalendar
	Stations *datalinker.StationIndex
	Location *time.Location
}

type Result struct {
	// Pairs in the order they were first produced
	Pairs      []Pair
	Departures map[Pair][]*ctdf.DepartureRecord

	// Distinct node sequences of the generated trips
	Patterns [][]string

	Identities map[string]*ctdf.Stop

	pairs map[Pair]bool
}

// HasPair is true only when a single trip visits origin and later destination
func (r *Result) HasPair(origin string, destination string) bool {
	return r.pairs[Pair{Origin: origin, Destination: destination}]
}

func (r *Result) DepartureCount() int {
	count := 0
	for _, departures := range r.Departures {
		count += len(departures)
	}
	return count
}

type node struct {
	identifier string
	platform   *ctdf.Platform
	entry      gtfs.SequenceEntry
}

func (g *Generator) Generate() *Result {
	location := g.Location
	if location == nil {
		location = time.UTC
	}

	result := &Result{
		Departures: map[Pair][]*ctdf.DepartureRecord{},
		Identities: map[string]*ctdf.Stop{},
		pairs:      map[Pair]bool{},
	}

	routes := map[string]gtfs.Route{}
	for _, route := range g.Schedule.Routes {
		routes[route.ID] = route
	}
	stops := map[string]gtfs.Stop{}
	for _, stop := range g.Schedule.Stops {
		stops[stop.ID] = stop
	}

	sequences := gtfs.BuildTripSequences(g.Schedule.StopTimes)
	patternsByStart := map[string][]int{}

	skippedInactive := 0
	skippedShort := 0

	for _, trip := range g.Schedule.Trips {
		dates := g.Services.ActiveDates(trip.ServiceID)
		if len(dates) == 0 {
			skippedInactive += 1
			continue
		}

		nodes := g.collapse(trip, sequences[trip.ID], stops, result.Identities)
		if distinctNodes(nodes) < 2 {
			skippedShort += 1
			continue
		}

		identifiers := make([]string, 0, len(nodes))
		for _, node := range nodes {
			identifiers = append(identifiers, node.identifier)
		}
		if !containsPattern(result.Patterns, patternsByStart[identifiers[0]], identifiers) {
			patternsByStart[identifiers[0]] = append(patternsByStart[identifiers[0]], len(result.Patterns))
			result.Patterns = append(result.Patterns, identifiers)
		}

		route := routes[trip.RouteID]
		emitted := map[Pair]bool{}

		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				pair := Pair{Origin: nodes[i].identifier, Destination: nodes[j].identifier}
				// A stop visited twice in one trip keeps its earliest departure for each destination
				if pair.Origin == pair.Destination || emitted[pair] {
					continue
				}
				emitted[pair] = true

				if !result.pairs[pair] {
					result.pairs[pair] = true
					result.Pairs = append(result.Pairs, pair)
				}

				for _, date := range dates {
					result.Departures[pair] = append(result.Departures[pair], &ctdf.DepartureRecord{
						TripID:              trip.ID,
						RouteID:             trip.RouteID,
						RouteName:           route.DisplayName(),
						Headsign:            trip.Headsign,
						Direction:           trip.Direction(),
						ServiceID:           trip.ServiceID,
						ServiceDate:         date.In(location).Format(time.DateOnly),
						ScheduledDeparture:  util.AddOffsetToDate(date.In(location), nodes[i].entry.Departure).Format(time.RFC3339),
						ScheduledArrival:    util.AddOffsetToDate(date.In(location), nodes[j].entry.Arrival).Format(time.RFC3339),
						DepartureTime:       gtfs.FormatTime(nodes[i].entry.Departure),
						ArrivalTime:         gtfs.FormatTime(nodes[j].entry.Arrival),
						OriginPlatform:      nodes[i].platform,
						DestinationPlatform: nodes[j].platform,
					})
				}
			}
		}
	}

	log.Info().
		Int("pairs", len(result.Pairs)).
		Int("patterns", len(result.Patterns)).
		Int("departures", result.DepartureCount()).
		Int("inactive", skippedInactive).
		Int("short", skippedShort).
		Msg("Generated connectivity")

	return result
}

// collapse maps a trip's sequence onto output nodes. Stations keep only their first visit,
// stops keep every visit so loop services still link back to their first stop.
func (g *Generator) collapse(trip gtfs.Trip, entries []gtfs.SequenceEntry, stops map[string]gtfs.Stop, identities map[string]*ctdf.Stop) []node {
	nodes := make([]node, 0, len(entries))
	seen := map[string]bool{}

	for _, entry := range entries {
		var current node

		if g.Stations != nil {
			station := g.Stations.Station(entry.StopID)
			if station == nil {
				log.Debug().Str("trip", trip.ID).Str("stop", entry.StopID).Msg("Platform not linked to a station")
				continue
			}

			current = node{identifier: station.Identifier, platform: station.Platform(entry.StopID), entry: entry}
			if _, exists := identities[station.Identifier]; !exists {
				identities[station.Identifier] = station.Stop()
			}
		} else {
			current = node{identifier: entry.StopID, entry: entry}
			if _, exists := identities[entry.StopID]; !exists {
				if stop, exists := stops[entry.StopID]; exists {
					identities[entry.StopID] = stop.CTDFStop()
				} else {
					identities[entry.StopID] = &ctdf.Stop{Identifier: entry.StopID, Name: entry.StopID, Type: ctdf.StopTypeStop}
				}
			}
		}

		if g.Stations != nil {
			if seen[current.identifier] {
				continue
			}
			seen[current.identifier] = true
		}
		nodes = append(nodes, current)
	}

	return nodes
}

func distinctNodes(nodes []node) int {
	identifiers := map[string]bool{}
	for _, node := range nodes {
		identifiers[node.identifier] = true
	}
	return len(identifiers)
}

func containsPattern(patterns [][]string, candidates []int, pattern []string) bool {
	for _, index := range candidates {
		if slices.Equal(patterns[index], pattern) {
			return true
		}
	}
	return false
}
