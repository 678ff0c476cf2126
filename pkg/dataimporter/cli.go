package dataimporter

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/datasets"
	"github.com/seqtransit/seqtransit/pkg/dataimporter/manager"
	"github.com/seqtransit/seqtransit/pkg/database"
	"github.com/seqtransit/seqtransit/pkg/departures"
	"github.com/seqtransit/seqtransit/pkg/elastic_client"
	"github.com/seqtransit/seqtransit/pkg/events"
	"github.com/seqtransit/seqtransit/pkg/indexer"
	"github.com/seqtransit/seqtransit/pkg/redis_client"
	"github.com/seqtransit/seqtransit/pkg/util"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

const failureRetryDelay = 1 * time.Minute

var datasourcesFlag = &cli.StringFlag{
	Name:    "datasources",
	Value:   manager.DefaultDataSourcesPath,
	EnvVars: []string{"SEQTRANSIT_DATASOURCES_PATH"},
	Usage:   "directory of data source definitions",
}

// connectImporter opens every backend an import publishes to and returns a cleanup func
func connectImporter(ctx context.Context) (*manager.Importer, func(), error) {
	env := util.GetEnvironmentVariables()

	db, err := database.Connect(ctx, env)
	if err != nil {
		return nil, nil, err
	}

	redisConnection, err := redis_client.Connect(ctx, env)
	if err != nil {
		db.Close(context.Background())
		return nil, nil, err
	}

	publisher, err := events.NewPublisher(redisConnection.QueueConnection)
	if err != nil {
		redisConnection.Close()
		db.Close(context.Background())
		return nil, nil, err
	}

	importer := &manager.Importer{
		Store:      db,
		Events:     publisher,
		Downloader: &manager.Downloader{},
	}

	elasticClient, err := elastic_client.Connect(env)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to Elasticsearch, origins will not be indexed")
	} else if elasticClient != nil {
		importer.Indexer = &indexer.Indexer{Client: elasticClient}
	}

	return importer, func() {
		redisConnection.Close()
		db.Close(context.Background())
	}, nil
}

func importLoop(ctx context.Context, importer *manager.Importer, dataset datasets.DataSet, repeatDuration time.Duration) error {
	for {
		startTime := time.Now()

		_, err := importer.ImportDataset(ctx, dataset, time.Now())
		if err != nil {
			if repeatDuration == 0 {
				return err
			}

			log.Error().Err(err).Str("id", dataset.Identifier).Msg("Failed to import dataset")
		}
		if repeatDuration == 0 {
			return nil
		}

		executionDuration := time.Since(startTime)
		log.Info().Str("id", dataset.Identifier).Msgf("Operation took %s", executionDuration.String())

		waitTime := repeatDuration - executionDuration
		if err != nil {
			waitTime = min(waitTime, failureRetryDelay)
		}

		if waitTime > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(waitTime):
			}
		}
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Download the GTFS schedule and publish per origin departure datasets",
		Subcommands: []*cli.Command{
			{
				Name:  "dataset",
				Usage: "Import a dataset",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "ID of the dataset",
						Required: true,
					},
					&cli.DurationFlag{
						Name:     "repeat-every",
						Usage:    "Repeat this dataset import every interval",
						Required: false,
					},
					datasourcesFlag,
				},
				Action: func(c *cli.Context) error {
					dataset, err := manager.GetDataset(c.String("datasources"), c.String("id"))
					if err != nil {
						return err
					}

					importer, cleanup, err := connectImporter(c.Context)
					if err != nil {
						return err
					}
					defer cleanup()

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					return importLoop(ctx, importer, dataset, c.Duration("repeat-every"))
				},
			},
			{
				Name:  "all",
				Usage: "Import every registered dataset on its refresh interval",
				Flags: []cli.Flag{
					datasourcesFlag,
				},
				Action: func(c *cli.Context) error {
					registered, err := manager.GetRegisteredDataSets(c.String("datasources"))
					if err != nil {
						return err
					}

					importer, cleanup, err := connectImporter(c.Context)
					if err != nil {
						return err
					}
					defer cleanup()

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					for _, dataset := range registered {
						repeatDuration := dataset.RefreshInterval
						if repeatDuration <= 0 {
							repeatDuration = 24 * time.Hour
						}

						log.Info().Str("interval", repeatDuration.String()).Str("id", dataset.Identifier).Msg("Loaded dataset")

						go importLoop(ctx, importer, dataset, repeatDuration)
					}

					<-ctx.Done()
					log.Info().Msg("Stopping dataset imports")

					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List the registered datasets",
				Flags: []cli.Flag{
					datasourcesFlag,
				},
				Action: func(c *cli.Context) error {
					registered, err := manager.GetRegisteredDataSets(c.String("datasources"))
					if err != nil {
						return err
					}

					for _, dataset := range registered {
						fmt.Printf("%s\t%s\t%s\t%s\n", dataset.Identifier, dataset.Mode, dataset.Horizon, dataset.Source)
					}

					return nil
				},
			},
			{
				Name:  "inspect",
				Usage: "Process a dataset without publishing it and print the departures of one origin",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "mode",
						Usage:    "transport mode of the dataset (ferry or train)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "origin",
						Usage: "origin stop id or station name, prints a summary when empty",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "override the dataset source with a URL or local file",
					},
					datasourcesFlag,
				},
				Action: func(c *cli.Context) error {
					registered, err := manager.GetRegisteredDataSets(c.String("datasources"))
					if err != nil {
						return err
					}

					dataset, err := manager.GetDatasetForMode(registered, c.String("mode"))
					if err != nil {
						return err
					}
					if source := c.String("source"); source != "" {
						dataset.Source = source
					}

					importer := &manager.Importer{Downloader: &manager.Downloader{}}
					processed, err := importer.Process(c.Context, dataset, time.Now())
					if err != nil {
						return err
					}

					if c.String("origin") == "" {
						largest, largestSize, err := database.LargestDocument(processed.Datasets)
						if err != nil {
							return err
						}
						if largest != nil {
							fmt.Printf("largest origin %s: %d bytes (limit %d)\n", largest.PrimaryIdentifier, largestSize, database.MaxDocumentSize)
						}

						fmt.Printf("%s: %d origins, %d pairs, %d patterns, %d departures (%s to %s)\n",
							dataset.Identifier,
							len(processed.Datasets),
							len(processed.Result.Pairs),
							len(processed.Result.Patterns),
							processed.Result.DepartureCount(),
							processed.HorizonFrom.Format(time.DateOnly),
							processed.HorizonTo.Format(time.DateOnly),
						)
						return nil
					}

					origin := departures.NormaliseIdentifier(dataset.Mode, c.String("origin"))
					for _, originDataset := range processed.Datasets {
						if originDataset.PrimaryIdentifier == origin {
							pretty.Println(originDataset)
							if size, err := database.DocumentSize(originDataset); err == nil {
								fmt.Printf("document size: %d bytes (limit %d)\n", size, database.MaxDocumentSize)
							}
							return nil
						}
					}

					return fmt.Errorf("%w: %s", departures.ErrOriginNotFound, origin)
				},
			},
		},
	}
}

var _ manager.Store = (*database.Instance)(nil)
var _ manager.SearchIndexer = (*indexer.Indexer)(nil)
