package ctdf

import (
	"encoding/json"
	"time"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Body      json.RawMessage `json:"body"`
}

type EventType string

const (
	EventTypeDatasetPublished EventType = "DatasetPublished"
)

func NewEvent(eventType EventType, timestamp time.Time, body interface{}) (*Event, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		Timestamp: timestamp,
		Body:      bodyBytes,
	}, nil
}

func (e *Event) DecodeBody(destination interface{}) error {
	return json.Unmarshal(e.Body, destination)
}
