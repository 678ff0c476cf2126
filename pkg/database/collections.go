package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OriginDatasetsCollection  = "origin_datasets"
	StationsCollection        = "stations"
	DatasetVersionsCollection = "dataset_versions"
)

func (i *Instance) createIndexes(ctx context.Context) {
	i.createOriginDatasetsIndexes(ctx)
	i.createStationsIndexes(ctx)
	i.createDatasetVersionsIndexes(ctx)
}

func (i *Instance) createOriginDatasetsIndexes(ctx context.Context) {
	originDatasetsCollection := i.GetCollection(OriginDatasetsCollection)
	_, err := originDatasetsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "mode", Value: 1},
				{Key: "primaryidentifier", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "origin.location", Value: "2dsphere"}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func (i *Instance) createStationsIndexes(ctx context.Context) {
	stationsCollection := i.GetCollection(StationsCollection)
	_, err := stationsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "identifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "platforms.stopid", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func (i *Instance) createDatasetVersionsIndexes(ctx context.Context) {
	datasetVersionsCollection := i.GetCollection(DatasetVersionsCollection)
	_, err := datasetVersionsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
