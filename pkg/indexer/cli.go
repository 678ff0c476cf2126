package indexer

import (
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
	"github.com/seqtransit/seqtransit/pkg/database"
	"github.com/seqtransit/seqtransit/pkg/elastic_client"
	"github.com/seqtransit/seqtransit/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "indexer",
		Usage: "Indexes published origins into Elasticsearch",
		Subcommands: []*cli.Command{
			{
				Name:  "origins",
				Usage: "rebuild the origin index of a mode from the published datasets",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "mode",
						Usage:    "transport mode to index (ferry or train)",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					mode, err := ctdf.ParseTransportType(c.String("mode"))
					if err != nil {
						return err
					}

					env := util.GetEnvironmentVariables()

					db, err := database.Connect(c.Context, env)
					if err != nil {
						return err
					}
					defer db.Close(c.Context)

					client, err := elastic_client.Connect(env)
					if err != nil {
						return err
					}
					if client == nil {
						log.Warn().Msg("No Elasticsearch address configured, nothing to index")
						return nil
					}

					originDatasets, err := db.GetOriginDatasets(c.Context, mode)
					if err != nil {
						return err
					}

					indexer := &Indexer{Client: client}
					if err := indexer.IndexOrigins(c.Context, mode, originDatasets); err != nil {
						return err
					}

					log.Info().Str("mode", string(mode)).Int("origins", len(originDatasets)).Msg("Reindexed origins")

					return nil
				},
			},
		},
	}
}
