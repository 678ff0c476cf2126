package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/api/routes"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/datasets"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/manager"
	"github.com/seqtransit/seqtransit/pkg/database"
	"github.com/seqtransit/seqtransit/pkg/events"
	"github.com/seqtransit/seqtransit/pkg/redis_client"
	"github.com/seqtransit/seqtransit/pkg/util"
	"github.com/urfave/cli/v2"
)

const realtimeMaxElapsedTime = 30 * time.Second

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the departures web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:    "datasources",
						Value:   manager.DefaultDataSourcesPath,
						EnvVars: []string{"SEQTRANSIT_DATASOURCES_PATH"},
						Usage:   "directory of data source definitions",
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Value: DefaultCacheTTL,
						Usage: "how long responses are cached for",
					},
				},
				Action: func(c *cli.Context) error {
					ctx := c.Context
					env := util.GetEnvironmentVariables()

					registered, err := manager.GetRegisteredDataSets(c.String("datasources"))
					if err != nil {
						return err
					}

					location, err := time.LoadLocation(datasets.DefaultTimezone)
					if err != nil {
						return err
					}

					db, err := database.Connect(ctx, env)
					if err != nil {
						return err
					}
					defer db.Close(context.Background())

					redisConnection, err := redis_client.Connect(ctx, env)
					if err != nil {
						return err
					}
					defer redisConnection.Close()

					responseCache := NewResponseCache(redisConnection.Client, c.Duration("cache-ttl"))

					err = events.StartConsumers(redisConnection.QueueConnection, func(version *ctdf.DatasetVersion) {
						log.Info().
							Str("mode", string(version.Mode)).
							Str("run", version.RunID).
							Msg("Dataset published, invalidating cached responses")

						if err := responseCache.InvalidateMode(context.Background(), version.Mode); err != nil {
							log.Error().Err(err).Str("mode", string(version.Mode)).Msg("Failed to invalidate cache")
						}
					})
					if err != nil {
						return err
					}

					deps := &routes.Dependencies{
						Store: db,
						Cache: responseCache,
						Realtime: &manager.Downloader{
							Client:         http.DefaultClient,
							MaxElapsedTime: realtimeMaxElapsedTime,
						},
						Queue:    redisConnection.QueueConnection,
						Datasets: registered,
						Location: location,
						Health: func(ctx context.Context) error {
							if err := redisConnection.Client.Ping(ctx).Err(); err != nil {
								return err
							}
							return db.Client.Ping(ctx, nil)
						},
					}

					return SetupServer(c.String("listen"), deps)
				},
			},
		},
	}
}
