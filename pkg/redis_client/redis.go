package redis_client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/util"
)

const defaultConnectionAddress = "localhost:6379"
const defaultDatabase = 0

const queueConnectionTag = "seqtransit"

type Connection struct {
	Client          *redis.Client
	QueueConnection rmq.Connection

	stopErrors chan struct{}
}

func Connect(ctx context.Context, env map[string]string) (*Connection, error) {
	address := util.GetEnvironmentVariable(env, "SEQTRANSIT_REDIS_ADDRESS", defaultConnectionAddress)
	password := env["SEQTRANSIT_REDIS_PASSWORD"]
	database := defaultDatabase

	if env["SEQTRANSIT_REDIS_DATABASE"] != "" {
		n, err := strconv.Atoi(env["SEQTRANSIT_REDIS_DATABASE"])
		if err != nil {
			return nil, fmt.Errorf("invalid SEQTRANSIT_REDIS_DATABASE: %w", err)
		}
		database = n
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	return NewConnection(ctx, client)
}

// NewConnection wraps an existing client, opening the queue connection on top of it
func NewConnection(ctx context.Context, client *redis.Client) (*Connection, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	errChan := make(chan error, 10)
	queueConnection, err := rmq.OpenConnectionWithRedisClient(queueConnectionTag, client, errChan)
	if err != nil {
		return nil, fmt.Errorf("open queue connection: %w", err)
	}

	stopErrors := make(chan struct{})
	go logQueueErrors(errChan, stopErrors)

	log.Info().Str("address", client.Options().Addr).Msg("Connected to Redis")

	return &Connection{
		Client:          client,
		QueueConnection: queueConnection,
		stopErrors:      stopErrors,
	}, nil
}

func (c *Connection) Close() error {
	<-c.QueueConnection.StopAllConsuming()
	close(c.stopErrors)
	return c.Client.Close()
}

// logQueueErrors drains the rmq error channel until stop is closed. The channel itself is
// never closed as rmq may still be writing to it from its heartbeat.
func logQueueErrors(errChan <-chan error, stop <-chan struct{}) {
	for {
		select {
		case err := <-errChan:
			log.Error().Err(err).Msg("Queue error")
		case <-stop:
			return
		}
	}
}
