package database

import (
	"context"
	"errors"

	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (i *Instance) PutDatasetVersion(ctx context.Context, version *ctdf.DatasetVersion) error {
	_, err := i.GetCollection(DatasetVersionsCollection).ReplaceOne(
		ctx,
		bson.M{"mode": version.Mode},
		version,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (i *Instance) GetDatasetVersion(ctx context.Context, mode ctdf.TransportType) (*ctdf.DatasetVersion, error) {
	var version *ctdf.DatasetVersion

	err := i.GetCollection(DatasetVersionsCollection).FindOne(ctx, bson.M{"mode": mode}).Decode(&version)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return version, nil
}
