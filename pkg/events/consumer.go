package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

const numConsumers = 2
const batchSize = 20

type DatasetPublishedHandler func(version *ctdf.DatasetVersion)

// StartConsumers runs the background consumers of the dataset events queue
func StartConsumers(connection rmq.Connection, handler DatasetPublishedHandler) error {
	log.Info().Str("queue", DatasetEventsQueue).Msg("Starting events consumers")

	queue, err := connection.OpenQueue(DatasetEventsQueue)
	if err != nil {
		return fmt.Errorf("open %s queue: %w", DatasetEventsQueue, err)
	}
	if err := queue.StartConsuming(numConsumers*batchSize, 1*time.Second); err != nil {
		return fmt.Errorf("start consuming %s: %w", DatasetEventsQueue, err)
	}

	for i := 0; i < numConsumers; i++ {
		if _, err := queue.AddBatchConsumer(fmt.Sprintf("dataset-events-%d", i), batchSize, 2*time.Second, NewBatchConsumer(handler)); err != nil {
			return err
		}
	}

	return nil
}

type BatchConsumer struct {
	handler DatasetPublishedHandler
}

func NewBatchConsumer(handler DatasetPublishedHandler) *BatchConsumer {
	return &BatchConsumer{handler: handler}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		var event ctdf.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		switch event.Type {
		case ctdf.EventTypeDatasetPublished:
			var version ctdf.DatasetVersion
			if err := event.DecodeBody(&version); err != nil {
				log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to decode event body")
				continue
			}

			consumer.handler(&version)
		default:
			log.Debug().Str("type", string(event.Type)).Msg("Ignoring event")
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}
