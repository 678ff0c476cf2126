package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "seqtransit"

type Instance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func Connect(ctx context.Context, env map[string]string) (*Instance, error) {
	connectionString := util.GetEnvironmentVariable(env, "SEQTRANSIT_MONGODB_CONNECTION", defaultMongoConnectionString)
	dbName := util.GetEnvironmentVariable(env, "SEQTRANSIT_MONGODB_DATABASE", defaultMongoDatabase)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	instance := &Instance{
		Client:   client,
		Database: client.Database(dbName),
	}
	instance.createIndexes(ctx)

	log.Info().Str("database", dbName).Msg("Connected to MongoDB")

	return instance, nil
}

func (i *Instance) Close(ctx context.Context) error {
	return i.Client.Disconnect(ctx)
}

func (i *Instance) GetCollection(collectionName string) *mongo.Collection {
	return i.Database.Collection(collectionName)
}
