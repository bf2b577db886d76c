package notice

import (
	"context"
	"sync"
)

// Kind is the severity of a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// User-facing messages.
const (
	AudioTranscribed  = "Audio transcribed successfully!"
	AudioFailed       = "Error transcribing audio. Please try again."
	FileTooLarge      = "File size exceeds 15MB limit. Please choose a smaller file."
	VoiceTranscribed  = "Voice transcribed successfully!"
	VoiceFailed       = "Error transcribing voice. Please try again."
	SpeechUnsupported = "Speech recognition not supported in this browser."
	Copied            = "Transcript copied to clipboard!"
	CopyFailed        = "Failed to copy transcript"
	Downloaded        = "Transcript downloaded!"
)

// Notice is a transient message shown to the user.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func Success(msg string) Notice { return Notice{Kind: KindSuccess, Message: msg} }
func Error(msg string) Notice   { return Notice{Kind: KindError, Message: msg} }
func Warning(msg string) Notice { return Notice{Kind: KindWarning, Message: msg} }
func Info(msg string) Notice    { return Notice{Kind: KindInfo, Message: msg} }

// Notifier delivers notices to one session's user. Delivery is best
// effort; a lost notice never fails the operation that raised it.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, sessionID string, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, sessionID string, n Notice) { f(ctx, sessionID, n) }

// Multi fans a notice out to several notifiers in order.
func Multi(ns ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, sessionID string, n Notice) {
		for _, x := range ns {
			x.Notify(ctx, sessionID, n)
		}
	})
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Recorded
}

// Recorded is a notice with the session it was sent to.
type Recorded struct {
	SessionID string
	Notice
}

func (r *Recorder) Notify(_ context.Context, sessionID string, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, Recorded{SessionID: sessionID, Notice: n})
	r.mu.Unlock()
}

// Notices returns a copy of what was recorded.
func (r *Recorder) Notices() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.notices...)
}

// Count returns how many notices of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.notices {
		if x.Kind == k {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.notices = nil
	r.mu.Unlock()
}
