package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

const DatasetEventsQueue = "dataset-events"

type Publisher struct {
	queue rmq.Queue
}

func NewPublisher(connection rmq.Connection) (*Publisher, error) {
	queue, err := connection.OpenQueue(DatasetEventsQueue)
	if err != nil {
		return nil, fmt.Errorf("open %s queue: %w", DatasetEventsQueue, err)
	}

	return &Publisher{queue: queue}, nil
}

func (p *Publisher) PublishDatasetPublished(version *ctdf.DatasetVersion) error {
	event, err := ctdf.NewEvent(ctdf.EventTypeDatasetPublished, time.Now(), version)
	if err != nil {
		return err
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.queue.PublishBytes(eventBytes); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	log.Info().Str("type", string(event.Type)).Str("mode", string(version.Mode)).Msg("Published event")

	return nil
}
