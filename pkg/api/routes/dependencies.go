package routes

import (
	"context"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/datasets"
	"github.com/seqtransit/seqtransit/pkg/departures"
)

type Store interface {
	departures.Store

	ListOrigins(ctx context.Context, mode ctdf.TransportType) ([]*ctdf.Stop, error)
	GetStation(ctx context.Context, slug string) (*ctdf.Station, error)
	GetDatasetVersion(ctx context.Context, mode ctdf.TransportType) (*ctdf.DatasetVersion, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, mode ctdf.TransportType, key string, value string)
}

type RealtimeFetcher interface {
	Fetch(ctx context.Context, source string, timeout time.Duration, authentication datasets.SourceAuthentication) ([]byte, error)
}

// Dependencies are shared by every route. Cache, Realtime and Queue may be nil.
type Dependencies struct {
	Store    Store
	Cache    Cache
	Realtime RealtimeFetcher
	Queue    rmq.Connection

	Datasets []datasets.DataSet
	Location *time.Location
	Now      func() time.Time

	Health func(ctx context.Context) error
}

func (d *Dependencies) now() time.Time {
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	if d.Location != nil {
		now = now.In(d.Location)
	}
	return now
}

func (d *Dependencies) dataset(mode ctdf.TransportType) *datasets.DataSet {
	for i := range d.Datasets {
		if d.Datasets[i].Mode == mode {
			return &d.Datasets[i]
		}
	}
	return nil
}

func (d *Dependencies) cacheGet(ctx context.Context, key string) (string, bool) {
	if d.Cache == nil {
		return "", false
	}
	return d.Cache.Get(ctx, key)
}

func (d *Dependencies) cacheSet(ctx context.Context, mode ctdf.TransportType, key string, value string) {
	if d.Cache == nil {
		return
	}
	d.Cache.Set(ctx, mode, key, value)
}
