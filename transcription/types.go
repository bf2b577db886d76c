package transcription

import (
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/util"
)

const (
	// DefaultPrompt precedes the audio in every content-generation call.
	DefaultPrompt = "Transcribe the following audio file:"
	// DefaultMaxUploadSize is the upload limit, 15 MiB.
	DefaultMaxUploadSize = 15 * util.MiB
	// FormField is the multipart field that carries the audio.
	FormField = "audio"
)

// Upload is one audio file as received. It lives for a single request and
// is never persisted or logged.
type Upload struct {
	Filename    string
	ContentType string
	// Size is the size the client declared; Data is what arrived.
	Size int64
	Data []byte
}

// Request is what a backend receives.
type Request struct {
	Audio    []byte
	MimeType string
	Filename string
	Prompt   string
	Model    string
	Language string
}

// Result is what a backend returns. Only Text is required.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// Segment is a time-aligned part of a transcript, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Provider is a transcription backend.
type Provider = provider.RequestResponse[Request, *Result]
