package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

const originMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"PrimaryIdentifier": {
				"type": "keyword"
			},
			"Name": {
				"type": "text",
				"fields": {
					"keyword": {
						"type": "keyword",
						"ignore_above": 256
					},
					"search_as_you_type": {
						"type": "search_as_you_type"
					}
				}
			},
			"Mode": {
				"type": "keyword"
			},
			"Location": {
				"type": "geo_point"
			},
			"Destinations": {
				"type": "keyword"
			},
			"Platforms": {
				"type": "keyword"
			}
		}
	}
}`

type Indexer struct {
	Client *elasticsearch.Client
}

func IndexPattern(mode ctdf.TransportType) string {
	return fmt.Sprintf("seqtransit-origins-%s-*", mode)
}

// OriginDocument is the searchable summary of a published origin
type OriginDocument struct {
	PrimaryIdentifier string
	Name              string
	Mode              ctdf.TransportType
	Location          []float64 `json:",omitempty"`
	Destinations      []string
	Platforms         []string `json:",omitempty"`
}

func NewOriginDocument(dataset *ctdf.OriginDataset) OriginDocument {
	document := OriginDocument{
		PrimaryIdentifier: dataset.PrimaryIdentifier,
		Mode:              dataset.Mode,
	}

	if dataset.Origin != nil {
		document.Name = dataset.Origin.Name
		document.Platforms = dataset.Origin.Platforms
		if dataset.Origin.Location != nil {
			document.Location = dataset.Origin.Location.Coordinates
		}
	}

	for destination := range dataset.Routes {
		document.Destinations = append(document.Destinations, destination)
	}
	sort.Strings(document.Destinations)

	return document
}

// IndexOrigins writes the datasets into a fresh index and removes the older indexes of the mode.
// Without a client it does nothing.
func (i *Indexer) IndexOrigins(ctx context.Context, mode ctdf.TransportType, datasets []*ctdf.OriginDataset) error {
	if i == nil || i.Client == nil {
		return nil
	}

	indexName := fmt.Sprintf("seqtransit-origins-%s-%d", mode, time.Now().Unix())

	if err := i.createIndex(ctx, indexName); err != nil {
		return err
	}

	bulkIndexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        i.Client,
		Index:         indexName,
		FlushInterval: 5 * time.Second,
	})
	if err != nil {
		return err
	}

	var failed int64
	for _, dataset := range datasets {
		documentBytes, err := json.Marshal(NewOriginDocument(dataset))
		if err != nil {
			return err
		}

		err = bulkIndexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: dataset.PrimaryIdentifier,
			Body:       bytes.NewReader(documentBytes),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				atomic.AddInt64(&failed, 1)
				if err != nil {
					log.Error().Err(err).Str("indexName", indexName).Msg("Failed to index document")
				} else {
					log.Error().Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Failed to index document")
				}
			},
		})
		if err != nil {
			return err
		}
	}

	if err := bulkIndexer.Close(ctx); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d origin documents failed to index", failed)
	}

	log.Info().Str("index", indexName).Int("length", len(datasets)).Msg("Indexed origins")

	return i.deleteOldIndexes(ctx, IndexPattern(mode), indexName)
}

func (i *Indexer) createIndex(ctx context.Context, indexName string) error {
	indexReq := esapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(originMapping),
	}

	resp, err := indexReq.Do(ctx, i.Client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("create index %s: %s", indexName, resp.Status())
	}

	return nil
}
