package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/sourcegraph/conc/pool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const publishBatchSize = 100
const publishConcurrency = 8

// ReplaceOriginDatasets overwrites the published dataset of every given origin.
// Origins are independent so batches are written in parallel.
func (i *Instance) ReplaceOriginDatasets(ctx context.Context, mode ctdf.TransportType, datasets []*ctdf.OriginDataset) error {
	if err := checkDocumentSizes(mode, datasets); err != nil {
		return err
	}

	startTime := time.Now()
	originDatasetsCollection := i.GetCollection(OriginDatasetsCollection)

	p := pool.New().WithMaxGoroutines(publishConcurrency).WithErrors().WithContext(ctx)

	for start := 0; start < len(datasets); start += publishBatchSize {
		end := min(start+publishBatchSize, len(datasets))
		batch := datasets[start:end]

		p.Go(func(ctx context.Context) error {
			operations := make([]mongo.WriteModel, 0, len(batch))
			for _, dataset := range batch {
				operations = append(operations, mongo.NewReplaceOneModel().
					SetFilter(bson.M{"mode": mode, "primaryidentifier": dataset.PrimaryIdentifier}).
					SetReplacement(dataset).
					SetUpsert(true))
			}

			if _, err := originDatasetsCollection.BulkWrite(ctx, operations, &options.BulkWriteOptions{}); err != nil {
				return fmt.Errorf("bulk write origin datasets: %w", err)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return err
	}

	log.Info().
		Str("mode", string(mode)).
		Int("length", len(datasets)).
		Str("bulkwrite", time.Since(startTime).String()).
		Msg("Published origin datasets")

	return nil
}

// GetOriginDataset returns nil without an error when the origin has never been published
func (i *Instance) GetOriginDataset(ctx context.Context, mode ctdf.TransportType, identifier string) (*ctdf.OriginDataset, error) {
	var dataset *ctdf.OriginDataset

	err := i.GetCollection(OriginDatasetsCollection).
		FindOne(ctx, bson.M{"mode": mode, "primaryidentifier": identifier}).
		Decode(&dataset)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return dataset, nil
}

// ListOrigins returns the origin identities of a mode without their departures
func (i *Instance) ListOrigins(ctx context.Context, mode ctdf.TransportType) ([]*ctdf.Stop, error) {
	cursor, err := i.GetCollection(OriginDatasetsCollection).Find(
		ctx,
		bson.M{"mode": mode},
		options.Find().SetProjection(bson.M{"origin": 1}).SetSort(bson.M{"primaryidentifier": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var origins []*ctdf.Stop
	for cursor.Next(ctx) {
		var dataset ctdf.OriginDataset
		if err := cursor.Decode(&dataset); err != nil {
			log.Error().Err(err).Msg("Failed to decode origin dataset")
			continue
		}
		origins = append(origins, dataset.Origin)
	}

	return origins, cursor.Err()
}

func (i *Instance) GetOriginDatasets(ctx context.Context, mode ctdf.TransportType) ([]*ctdf.OriginDataset, error) {
	cursor, err := i.GetCollection(OriginDatasetsCollection).Find(ctx, bson.M{"mode": mode})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var datasets []*ctdf.OriginDataset
	if err := cursor.All(ctx, &datasets); err != nil {
		return nil, err
	}

	return datasets, nil
}
