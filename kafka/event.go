package kafka

import (
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// EventTranscriptUpdated is published after every transcript write.
const EventTranscriptUpdated = "transcript.updated"

// Event is the envelope of every published message. Subject is the
// session id and doubles as the partition key, so one session's events
// stay ordered.
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Source      string         `json:"source"`
	ContentType string         `json:"content_type"`
	Version     string         `json:"version"`
	Timestamp   time.Time      `json:"timestamp"`
	Subject     string         `json:"subject,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// ToMessage encodes e for topic.
func (e Event) ToMessage(topic string) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, err
	}
	key := e.Subject
	if key == "" {
		key = e.ID
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  e.Timestamp,
		Headers: []kafkago.Header{
			{Key: "event-id", Value: []byte(e.ID)},
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "event-source", Value: []byte(e.Source)},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}
