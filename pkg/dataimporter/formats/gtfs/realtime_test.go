package gtfs

import (
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func tripUpdateEntity(id string, routeID string) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(id),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{
				TripId:  proto.String(id),
				RouteId: proto.String(routeID),
			},
		},
	}
}

func vehicleEntity(id string, routeID string) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(id),
		Vehicle: &gtfs.VehiclePosition{
			Trip: &gtfs.TripDescriptor{
				RouteId: proto.String(routeID),
			},
		},
	}
}

func buildFeed(t *testing.T, entities ...*gtfs.FeedEntity) []byte {
	t.Helper()

	body, err := proto.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(1718000000),
		},
		Entity: entities,
	})
	require.NoError(t, err)

	return body
}

func decodeFeed(t *testing.T, body []byte) *gtfs.FeedMessage {
	t.Helper()

	feed := &gtfs.FeedMessage{}
	require.NoError(t, proto.Unmarshal(body, feed))

	return feed
}

func entityIDs(feed *gtfs.FeedMessage) []string {
	var ids []string
	for _, entity := range feed.GetEntity() {
		ids = append(ids, entity.GetId())
	}
	return ids
}

func TestFilterFeedPrefix(t *testing.T) {
	body := buildFeed(t,
		tripUpdateEntity("ferry-trip", "F1-4055"),
		tripUpdateEntity("bus-trip", "66-1"),
		vehicleEntity("ferry-vehicle", "F11-4055"),
		vehicleEntity("no-route", ""),
		&gtfs.FeedEntity{Id: proto.String("alert"), Alert: &gtfs.Alert{}},
	)

	output, err := FilterFeed(body, PrefixPredicate("F"))
	require.NoError(t, err)

	feed := decodeFeed(t, output)
	assert.Equal(t, []string{"ferry-trip", "ferry-vehicle", "alert"}, entityIDs(feed))
	assert.Equal(t, uint64(1718000000), feed.GetHeader().GetTimestamp())
}

func TestFilterFeedSet(t *testing.T) {
	body := buildFeed(t,
		tripUpdateEntity("train", "BNFG-4049"),
		tripUpdateEntity("other-train", "SHCL-4049"),
		&gtfs.FeedEntity{Id: proto.String("alert"), Alert: &gtfs.Alert{}},
	)

	output, err := FilterFeed(body, SetPredicate([]string{"BNFG-4049"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"train", "alert"}, entityIDs(decodeFeed(t, output)))
}

func TestFilterFeedRejectsGarbage(t *testing.T) {
	_, err := FilterFeed([]byte{0xFF, 0x01, 0x02}, PrefixPredicate("F"))

	assert.Error(t, err)
}
