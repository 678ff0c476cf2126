package gtfs

import (
	"fmt"
	"strings"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

type RoutePredicate func(routeID string) bool

func PrefixPredicate(prefix string) RoutePredicate {
	return func(routeID string) bool {
		return strings.HasPrefix(routeID, prefix)
	}
}

func SetPredicate(routeIDs []string) RoutePredicate {
	set := make(map[string]bool, len(routeIDs))
	for _, routeID := range routeIDs {
		set[routeID] = true
	}

	return func(routeID string) bool {
		return set[routeID]
	}
}

// FilterFeed decodes a GTFS-RT FeedMessage and re-encodes it with only the entities whose
// trip route satisfies keep. Alerts are always kept.
func FilterFeed(body []byte, keep RoutePredicate) ([]byte, error) {
	feed := gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode gtfs-rt feed: %w", err)
	}

	entities := make([]*gtfs.FeedEntity, 0, len(feed.GetEntity()))
	for _, entity := range feed.GetEntity() {
		if entity.GetAlert() != nil {
			entities = append(entities, entity)
			continue
		}

		var trip *gtfs.TripDescriptor
		if tripUpdate := entity.GetTripUpdate(); tripUpdate != nil {
			trip = tripUpdate.GetTrip()
		} else if vehiclePosition := entity.GetVehicle(); vehiclePosition != nil {
			trip = vehiclePosition.GetTrip()
		}

		if trip == nil || trip.GetRouteId() == "" {
			continue
		}
		if keep(trip.GetRouteId()) {
			entities = append(entities, entity)
		}
	}

	log.Debug().
		Int("entities", len(feed.GetEntity())).
		Int("kept", len(entities)).
		Msg("Filtered GTFS-RT feed")

	filtered := &gtfs.FeedMessage{
		Header: feed.GetHeader(),
		Entity: entities,
	}

	output, err := proto.Marshal(filtered)
	if err != nil {
		return nil, fmt.Errorf("encode gtfs-rt feed: %w", err)
	}

	return output, nil
}
