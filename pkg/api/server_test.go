package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/gofiber/fiber/v2"
	"github.com/seqtransit/seqtransit/pkg/api/routes"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/datasets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

type fakeStore struct {
	origins  map[string]*ctdf.OriginDataset
	stations map[string]*ctdf.Station
	versions map[ctdf.TransportType]*ctdf.DatasetVersion
	err      error

	originLookups int
}

func (f *fakeStore) GetOriginDataset(ctx context.Context, mode ctdf.TransportType, identifier string) (*ctdf.OriginDataset, error) {
	f.originLookups++
	if f.err != nil {
		return nil, f.err
	}
	return f.origins[string(mode)+"/"+identifier], nil
}

func (f *fakeStore) ListOrigins(ctx context.Context, mode ctdf.TransportType) ([]*ctdf.Stop, error) {
	if f.err != nil {
		return nil, f.err
	}

	var origins []*ctdf.Stop
	for _, dataset := range f.origins {
		if dataset.Mode == mode {
			origins = append(origins, dataset.Origin)
		}
	}
	return origins, nil
}

func (f *fakeStore) GetStation(ctx context.Context, slug string) (*ctdf.Station, error) {
	return f.stations[slug], f.err
}

func (f *fakeStore) GetDatasetVersion(ctx context.Context, mode ctdf.TransportType) (*ctdf.DatasetVersion, error) {
	return f.versions[mode], f.err
}

type fakeFetcher struct {
	body    []byte
	err     error
	sources []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, source string, timeout time.Duration, authentication datasets.SourceAuthentication) ([]byte, error) {
	f.sources = append(f.sources, source)
	return f.body, f.err
}

var testNow = time.Date(2024, 6, 11, 9, 0, 0, 0, time.FixedZone("AEST", 10*60*60))

func departureAt(tripID string, at time.Time) *ctdf.DepartureRecord {
	return &ctdf.DepartureRecord{
		TripID:             tripID,
		RouteID:            "F1-4055",
		ScheduledDeparture: at.Format(time.RFC3339),
		DepartureTime:      at.Format("15:04:05"),
	}
}

func newFakeStore() *fakeStore {
	riverside := &ctdf.Stop{Identifier: "317584", Name: "Riverside ferry terminal", Type: ctdf.StopTypeStop}
	northQuay := &ctdf.Stop{Identifier: "317590", Name: "North Quay ferry terminal", Type: ctdf.StopTypeStop}
	central := &ctdf.Stop{Identifier: "CENTRAL", Name: "Central", Type: ctdf.StopTypeStation}

	return &fakeStore{
		origins: map[string]*ctdf.OriginDataset{
			"ferry/317584": {
				PrimaryIdentifier: "317584",
				Mode:              ctdf.TransportTypeFerry,
				Origin:            riverside,
				Routes: map[string]*ctdf.RouteDestination{
					"317590": {
						Destination: northQuay,
						Departures: []*ctdf.DepartureRecord{
							departureAt("gone", testNow.Add(-5*time.Minute)),
							departureAt("next", testNow.Add(15*time.Minute)),
							departureAt("later", testNow.Add(3*time.Hour)),
						},
					},
				},
			},
			"ferry/317590": {
				PrimaryIdentifier: "317590",
				Mode:              ctdf.TransportTypeFerry,
				Origin:            northQuay,
				Routes:            map[string]*ctdf.RouteDestination{},
			},
			"train/CENTRAL": {
				PrimaryIdentifier: "CENTRAL",
				Mode:              ctdf.TransportTypeTrain,
				Origin:            central,
				Routes:            map[string]*ctdf.RouteDestination{},
			},
		},
		stations: map[string]*ctdf.Station{
			"CENTRAL": {
				Identifier: "CENTRAL",
				Name:       "Central",
				Platforms: []ctdf.Platform{
					{StopID: "600005", Name: "Central station, platform 1", Code: "1"},
					{StopID: "600006", Name: "Central station, platform 2", Code: "2"},
				},
			},
		},
		versions: map[ctdf.TransportType]*ctdf.DatasetVersion{
			ctdf.TransportTypeFerry: {
				RunID:         "run-1",
				Dataset:       "seq-translink-ferry",
				Mode:          ctdf.TransportTypeFerry,
				RouteIDPrefix: "F",
			},
		},
	}
}

func newTestApp(store *fakeStore, responseCache routes.Cache, fetcher routes.RealtimeFetcher) *fiber.App {
	return NewApp(&routes.Dependencies{
		Store:    store,
		Cache:    responseCache,
		Realtime: fetcher,
		Datasets: []datasets.DataSet{
			{
				Identifier:     "seq-translink-ferry",
				Mode:           ctdf.TransportTypeFerry,
				RealtimeSource: "https://gtfsrt.example/feed",
			},
			{
				Identifier: "seq-translink-train",
				Mode:       ctdf.TransportTypeTrain,
			},
		},
		Location: testNow.Location(),
		Now:      func() time.Time { return testNow },
	})
}

func doRequest(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()

	response, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	return response, body
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()

	var errorBody struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &errorBody))

	return errorBody.Error
}

func TestDeparturesRoute(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	response, body := doRequest(t, app, "/core/ferry/departures/317584/317590?hours=2")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var result struct {
		Origin struct {
			Identifier string `json:"identifier"`
		} `json:"origin"`
		Departures []struct {
			TripID string `json:"tripId"`
		} `json:"departures"`
		TotalDepartures int `json:"totalDepartures"`
		TimeWindow      struct {
			Hours int `json:"hours"`
		} `json:"timeWindow"`
	}
	require.NoError(t, json.Unmarshal(body, &result))

	assert.Equal(t, "317584", result.Origin.Identifier)
	require.Len(t, result.Departures, 1)
	assert.Equal(t, "next", result.Departures[0].TripID)
	assert.Equal(t, 1, result.TotalDepartures)
	assert.Equal(t, 2, result.TimeWindow.Hours)
}

func TestDeparturesRouteDefaultWindow(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	response, body := doRequest(t, app, "/core/ferry/departures/317584/317590")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), `"hours":2`)
}

func TestDeparturesRouteErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown mode", "/core/bus/departures/A/B", http.StatusBadRequest, "invalid_mode"},
		{"window too small", "/core/ferry/departures/317584/317590?hours=0", http.StatusBadRequest, "invalid_window"},
		{"window too large", "/core/ferry/departures/317584/317590?hours=169", http.StatusBadRequest, "invalid_window"},
		{"window not a number", "/core/ferry/departures/317584/317590?hours=soon", http.StatusBadRequest, "invalid_window"},
		{"unknown origin", "/core/ferry/departures/999999/317590", http.StatusNotFound, "origin_not_found"},
		{"unreachable destination", "/core/ferry/departures/317590/317584", http.StatusNotFound, "destination_unreachable"},
		{"same origin and destination", "/core/ferry/departures/317584/317584", http.StatusNotFound, "destination_unreachable"},
	}

	app := newTestApp(newFakeStore(), nil, nil)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			response, body := doRequest(t, app, test.target)
			assert.Equal(t, test.status, response.StatusCode)
			assert.Equal(t, test.code, decodeError(t, body))
		})
	}
}

func TestDeparturesRouteStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection reset")

	response, body := doRequest(t, newTestApp(store, nil, nil), "/core/ferry/departures/317584/317590")
	assert.Equal(t, http.StatusInternalServerError, response.StatusCode)
	assert.Equal(t, "internal_error", decodeError(t, body))
}

func TestDeparturesRouteCached(t *testing.T) {
	store := newFakeStore()
	responseCache, _ := newTestCache(t)
	app := newTestApp(store, responseCache, nil)

	first, firstBody := doRequest(t, app, "/core/ferry/departures/317584/317590?hours=4")
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Empty(t, first.Header.Get("X-Cache"))

	second, secondBody := doRequest(t, app, "/core/ferry/departures/317584/317590?hours=4")
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))
	assert.JSONEq(t, string(firstBody), string(secondBody))
	assert.Equal(t, 1, store.originLookups)

	require.NoError(t, responseCache.InvalidateMode(context.Background(), ctdf.TransportTypeFerry))

	third, _ := doRequest(t, app, "/core/ferry/departures/317584/317590?hours=4")
	assert.Empty(t, third.Header.Get("X-Cache"))
	assert.Equal(t, 2, store.originLookups)
}

func TestOriginsRoute(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	response, body := doRequest(t, app, "/core/ferry/origins")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var origins []struct {
		Identifier string `json:"identifier"`
		Name       string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(body, &origins))
	require.Len(t, origins, 2)
	assert.Equal(t, "North Quay ferry terminal", origins[0].Name)
	assert.Equal(t, "Riverside ferry terminal", origins[1].Name)
}

func TestOriginRoute(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	response, body := doRequest(t, app, "/core/ferry/origins/317584")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var summary struct {
		Destinations []struct {
			Destination struct {
				Identifier string `json:"identifier"`
			} `json:"destination"`
			Departures int `json:"departures"`
		} `json:"destinations"`
		Departures int `json:"departures"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Len(t, summary.Destinations, 1)
	assert.Equal(t, "317590", summary.Destinations[0].Destination.Identifier)
	assert.Equal(t, 3, summary.Destinations[0].Departures)
	assert.Equal(t, 3, summary.Departures)

	response, body = doRequest(t, app, "/core/train/origins/nowhere")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "origin_not_found", decodeError(t, body))
}

func TestStationRoute(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	response, body := doRequest(t, app, "/core/train/stations/central")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var station ctdf.Station
	require.NoError(t, json.Unmarshal(body, &station))
	assert.Equal(t, "CENTRAL", station.Identifier)
	assert.Equal(t, []string{"600005", "600006"}, station.PlatformIDs())

	response, body = doRequest(t, app, "/core/train/stations/atlantis")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "station_not_found", decodeError(t, body))
}

func TestDatasetVersionRoute(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	response, body := doRequest(t, app, "/core/ferry/version")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var version ctdf.DatasetVersion
	require.NoError(t, json.Unmarshal(body, &version))
	assert.Equal(t, "run-1", version.RunID)

	response, body = doRequest(t, app, "/core/train/version")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "dataset_unavailable", decodeError(t, body))
}

func realtimeFeed(t *testing.T, routeIDs ...string) []byte {
	t.Helper()

	feed := &gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
	}
	for _, routeID := range routeIDs {
		feed.Entity = append(feed.Entity, &gtfsrt.FeedEntity{
			Id: proto.String(routeID),
			TripUpdate: &gtfsrt.TripUpdate{
				Trip: &gtfsrt.TripDescriptor{RouteId: proto.String(routeID)},
			},
		})
	}

	body, err := proto.Marshal(feed)
	require.NoError(t, err)

	return body
}

func TestRealtimeRoute(t *testing.T) {
	fetcher := &fakeFetcher{body: realtimeFeed(t, "F1-4055", "66-1", "F11-4055")}
	app := newTestApp(newFakeStore(), nil, fetcher)

	response, body := doRequest(t, app, "/core/ferry/realtime")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "application/x-protobuf", response.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, []string{"https://gtfsrt.example/feed"}, fetcher.sources)

	feed := &gtfsrt.FeedMessage{}
	require.NoError(t, proto.Unmarshal(body, feed))

	var ids []string
	for _, entity := range feed.GetEntity() {
		ids = append(ids, entity.GetId())
	}
	assert.Equal(t, []string{"F1-4055", "F11-4055"}, ids)
}

func TestRealtimeRouteUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{body: realtimeFeed(t, "BNBR-1")}
	app := newTestApp(newFakeStore(), nil, fetcher)

	response, body := doRequest(t, app, "/core/train/realtime")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, "realtime_unavailable", decodeError(t, body))
	assert.Empty(t, fetcher.sources)
}

func TestRealtimeRouteUpstreamFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("502 Bad Gateway")}
	app := newTestApp(newFakeStore(), nil, fetcher)

	response, body := doRequest(t, app, "/core/ferry/realtime")
	assert.Equal(t, http.StatusBadGateway, response.StatusCode)
	assert.Equal(t, "upstream_error", decodeError(t, body))

	fetcher.err = nil
	fetcher.body = []byte("not a protobuf feed")

	response, body = doRequest(t, app, "/core/ferry/realtime")
	assert.Equal(t, http.StatusBadGateway, response.StatusCode)
	assert.Equal(t, "upstream_error", decodeError(t, body))
}

func TestHealthAndVersion(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	response, body := doRequest(t, app, "/health")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Equal(t, "OK", string(body))

	response, body = doRequest(t, app, "/core/version")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.JSONEq(t, `{"version":"1.0.0"}`, string(body))

	response, _ = doRequest(t, app, "/core/queues/stats")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

func TestUnknownRoutesReturnNotFound(t *testing.T) {
	app := newTestApp(newFakeStore(), nil, nil)

	for _, target := range []string{"/nope", "/core/ferry/departures/317584", "/core/train/stations"} {
		response, _ := doRequest(t, app, target)
		assert.Equal(t, http.StatusNotFound, response.StatusCode, target)
	}
}

func TestLoggerKeepsHandlerErrorStatus(t *testing.T) {
	app := fiber.New()
	app.Use(NewLogger())
	app.Get("/unavailable", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "upstream down")
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	response, body := doRequest(t, app, "/unavailable")
	assert.Equal(t, http.StatusServiceUnavailable, response.StatusCode)
	assert.Equal(t, "upstream down", string(body))

	response, _ = doRequest(t, app, "/broken")
	assert.Equal(t, http.StatusInternalServerError, response.StatusCode)
}
