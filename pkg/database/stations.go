package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (i *Instance) ReplaceStations(ctx context.Context, stations []*ctdf.Station) error {
	if len(stations) == 0 {
		return nil
	}

	operations := make([]mongo.WriteModel, 0, len(stations))
	for _, station := range stations {
		operations = append(operations, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"identifier": station.Identifier}).
			SetReplacement(station).
			SetUpsert(true))
	}

	if _, err := i.GetCollection(StationsCollection).BulkWrite(ctx, operations, &options.BulkWriteOptions{}); err != nil {
		return fmt.Errorf("bulk write stations: %w", err)
	}

	return nil
}

// GetStation returns nil without an error when no station has the slug
func (i *Instance) GetStation(ctx context.Context, slug string) (*ctdf.Station, error) {
	var station *ctdf.Station

	err := i.GetCollection(StationsCollection).FindOne(ctx, bson.M{"identifier": slug}).Decode(&station)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return station, nil
}
