package transcript

import (
	"time"
)

// Source tells which path produced a transcript.
type Source string

const (
	SourceUpload Source = "upload"
	SourceVoice  Source = "voice"
)

// Transcript is the single piece of state shown on the page. Text is kept
// verbatim, including leading and trailing whitespace.
type Transcript struct {
	Text      string    `json:"text"`
	Source    Source    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is the stored form of a Transcript. Text holds ciphertext when
// Sealed is set.
type Record struct {
	Text      string    `json:"text"`
	Source    Source    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
	Sealed    bool      `json:"sealed,omitempty"`
}
