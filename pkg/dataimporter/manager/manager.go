package manager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/connectivity"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/datasets"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/formats/gtfs"
	"github.com/seqtransit/seqtransit/pkg/datalinker"
)

var ErrNoDepartures = errors.New("no departures generated")

type Store interface {
	ReplaceOriginDatasets(ctx context.Context, mode ctdf.TransportType, datasets []*ctdf.OriginDataset) error
	ReplaceStations(ctx context.Context, stations []*ctdf.Station) error
	PutDatasetVersion(ctx context.Context, version *ctdf.DatasetVersion) error
}

type EventPublisher interface {
	PublishDatasetPublished(version *ctdf.DatasetVersion) error
}

type SearchIndexer interface {
	IndexOrigins(ctx context.Context, mode ctdf.TransportType, datasets []*ctdf.OriginDataset) error
}

// Importer runs the processing pipeline of a dataset and publishes the result.
// Events and Indexer are optional.
type Importer struct {
	Store      Store
	Events     EventPublisher
	Indexer    SearchIndexer
	Downloader *Downloader
}

// Processed is the in-memory output of a run before anything is published
type Processed struct {
	Mode     ctdf.TransportType
	Schedule *gtfs.Schedule
	Services *gtfs.ServiceCalendar
	Stations *datalinker.StationIndex
	Result   *connectivity.Result
	Datasets []*ctdf.OriginDataset

	HorizonFrom time.Time
	HorizonTo   time.Time
}

// Process downloads and transforms a dataset without publishing it
func (i *Importer) Process(ctx context.Context, dataset datasets.DataSet, now time.Time) (*Processed, error) {
	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	location, err := dataset.Location()
	if err != nil {
		return nil, err
	}
	now = now.In(location)

	horizonFrom, horizonTo, err := dataset.HorizonDates(now)
	if err != nil {
		return nil, err
	}

	downloader := i.Downloader
	if downloader == nil {
		downloader = &Downloader{}
	}
	body, err := downloader.Fetch(ctx, dataset.Source, dataset.Timeout(), dataset.SourceAuthentication)
	if err != nil {
		return nil, err
	}

	schedule := &gtfs.Schedule{}
	if err := schedule.ParseFile(bytes.NewReader(body)); err != nil {
		return nil, err
	}

	modeSchedule, err := gtfs.FilterByMode(schedule, dataset.Mode)
	if err != nil {
		return nil, err
	}

	services := gtfs.ActiveServices(modeSchedule.Calendars, modeSchedule.CalendarDates, horizonFrom, horizonTo)

	var stations *datalinker.StationIndex
	if dataset.Mode.UsesStations() {
		stations = datalinker.LinkStations(referencedStops(modeSchedule))
	}

	generator := connectivity.Generator{
		Schedule: modeSchedule,
		Services: services,
		Stations: stations,
		Location: location,
	}
	result := generator.Generate()

	originDatasets := connectivity.BuildOriginDatasets(result, connectivity.WriterOptions{
		Mode:            dataset.Mode,
		DataSource:      dataset.DataSource(),
		Now:             now,
		SortByDeparture: dataset.Mode == ctdf.TransportTypeFerry,
	})

	return &Processed{
		Mode:        dataset.Mode,
		Schedule:    modeSchedule,
		Services:    services,
		Stations:    stations,
		Result:      result,
		Datasets:    originDatasets,
		HorizonFrom: horizonFrom,
		HorizonTo:   horizonTo,
	}, nil
}

// ImportDataset processes a dataset and replaces the published origins of its mode.
// Nothing is written unless processing completed.
func (i *Importer) ImportDataset(ctx context.Context, dataset datasets.DataSet, now time.Time) (*ctdf.DatasetVersion, error) {
	startTime := time.Now()

	processed, err := i.Process(ctx, dataset, now)
	if err != nil {
		return nil, err
	}
	if len(processed.Datasets) == 0 {
		return nil, fmt.Errorf("dataset %s: %w", dataset.Identifier, ErrNoDepartures)
	}

	if processed.Stations != nil {
		if err := i.Store.ReplaceStations(ctx, processed.Stations.Stations()); err != nil {
			return nil, fmt.Errorf("publish stations: %w", err)
		}
	}
	if err := i.Store.ReplaceOriginDatasets(ctx, dataset.Mode, processed.Datasets); err != nil {
		return nil, fmt.Errorf("publish origin datasets: %w", err)
	}

	version := &ctdf.DatasetVersion{
		RunID:         uuid.New().String(),
		Dataset:       dataset.Identifier,
		Mode:          dataset.Mode,
		GeneratedAt:   now,
		HorizonFrom:   processed.HorizonFrom.Format(time.DateOnly),
		HorizonTo:     processed.HorizonTo.Format(time.DateOnly),
		Origins:       len(processed.Datasets),
		Pairs:         len(processed.Result.Pairs),
		Patterns:      len(processed.Result.Patterns),
		Departures:    processed.Result.DepartureCount(),
		RouteIDs:      processed.Schedule.RouteIDs(),
		RouteIDPrefix: dataset.RealtimeRouteIDPrefix(),
	}
	if err := i.Store.PutDatasetVersion(ctx, version); err != nil {
		return nil, fmt.Errorf("publish dataset version: %w", err)
	}

	if i.Indexer != nil {
		if err := i.Indexer.IndexOrigins(ctx, dataset.Mode, processed.Datasets); err != nil {
			log.Error().Err(err).Str("id", dataset.Identifier).Msg("Failed to index origins")
		}
	}
	if i.Events != nil {
		if err := i.Events.PublishDatasetPublished(version); err != nil {
			log.Error().Err(err).Str("id", dataset.Identifier).Msg("Failed to publish dataset event")
		}
	}

	log.Info().
		Str("id", dataset.Identifier).
		Str("run", version.RunID).
		Int("origins", version.Origins).
		Int("pairs", version.Pairs).
		Int("departures", version.Departures).
		Str("duration", time.Since(startTime).String()).
		Msg("Imported dataset")

	return version, nil
}

// referencedStops keeps the stops used by the schedule's stop_times, in stops.txt order
func referencedStops(schedule *gtfs.Schedule) []gtfs.Stop {
	used := map[string]bool{}
	for _, stopTime := range schedule.StopTimes {
		used[stopTime.StopID] = true
	}

	var stops []gtfs.Stop
	for _, stop := range schedule.Stops {
		if used[stop.ID] {
			stops = append(stops, stop)
		}
	}
	return stops
}
