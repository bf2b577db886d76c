package sse

import (
	"encoding/json"
	"fmt"
)

// Event names sent on the stream.
const (
	EventConnected  = "connected"
	EventNotice     = "notice"
	EventTranscript = "transcript"
	EventDictation  = "dictation"
)

// Event is one named server-sent event. Data is written on a single
// "data:" line, so it must not contain newlines; JSON payloads never do.
type Event struct {
	Name string
	Data []byte
}

// NewEvent encodes v as JSON.
func NewEvent(name string, v any) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("sse: encode %s event: %w", name, err)
	}
	return Event{Name: name, Data: data}, nil
}
