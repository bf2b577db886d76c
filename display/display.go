package display

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/notice"
	"github.com/kbukum/voxscribe/transcript"
)

const (
	// Filename is the name of every downloaded transcript.
	Filename = "transcript.txt"
	// ContentType of the download.
	ContentType = "text/plain; charset=utf-8"
	// DefaultCopiedFor is how long the copied indicator stays on.
	DefaultCopiedFor = 2 * time.Second
)

// View is what the page renders. When Visible is false the page renders
// no transcript container at all.
type View struct {
	Visible   bool              `json:"visible"`
	Text      string            `json:"text,omitempty"`
	Lines     []string          `json:"lines,omitempty"`
	Source    transcript.Source `json:"source,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitzero"`
	Copied    bool              `json:"copied"`
}

// Attachment is a downloadable file.
type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Disposition returns the Content-Disposition header value.
func (a Attachment) Disposition() string {
	return fmt.Sprintf("attachment; filename=%q", a.Filename)
}

// Display renders a transcript and performs copy and download.
type Display struct {
	clipboard Clipboard
	notifier  notice.Notifier
	copiedFor time.Duration
	now       func() time.Time

	mu     sync.Mutex
	copied map[string]time.Time
}

// Option configures a Display.
type Option func(*Display)

// WithCopiedFor sets how long the copied indicator stays on.
func WithCopiedFor(d time.Duration) Option { return func(x *Display) { x.copiedFor = d } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(x *Display) { x.now = now } }

// New creates a Display that copies through clipboard.
func New(clipboard Clipboard, notifier notice.Notifier, opts ...Option) *Display {
	d := &Display{
		clipboard: clipboard,
		notifier:  notifier,
		copiedFor: DefaultCopiedFor,
		now:       time.Now,
		copied:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Render builds the view of t for a session. Text is verbatim; Lines
// splits it on line breaks for renderers that cannot preserve them.
func (d *Display) Render(sessionID string, t *transcript.Transcript) View {
	if t == nil {
		return View{}
	}
	return View{
		Visible:   true,
		Text:      t.Text,
		Lines:     strings.Split(t.Text, "\n"),
		Source:    t.Source,
		UpdatedAt: t.UpdatedAt,
		Copied:    d.CopiedActive(sessionID),
	}
}

// Copy writes t to the clipboard. Failure raises exactly one error notice
// and is not retried; the transcript is never touched.
func (d *Display) Copy(ctx context.Context, sessionID string, t *transcript.Transcript) error {
	return d.CopyWith(ctx, sessionID, t, d.clipboard)
}

// CopyWith is Copy through a clipboard chosen per call, such as the
// result the browser reported for its own clipboard write.
func (d *Display) CopyWith(ctx context.Context, sessionID string, t *transcript.Transcript, clipboard Clipboard) error {
	if t == nil {
		return apperrors.NotFound("transcript")
	}
	if err := clipboard.Copy(ctx, t.Text); err != nil {
		d.notifier.Notify(ctx, sessionID, notice.Error(notice.CopyFailed))
		return fmt.Errorf("copy transcript: %w", err)
	}

	d.mu.Lock()
	d.copied[sessionID] = d.now().Add(d.copiedFor)
	d.mu.Unlock()
	d.notifier.Notify(ctx, sessionID, notice.Success(notice.Copied))
	return nil
}

// CopiedFor is how long the copied indicator stays on.
func (d *Display) CopiedFor() time.Duration { return d.copiedFor }

// CopiedActive reports whether the copied indicator is still on.
func (d *Display) CopiedActive(sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.copied[sessionID]
	if !ok {
		return false
	}
	if !d.now().Before(until) {
		delete(d.copied, sessionID)
		return false
	}
	return true
}

// Prune forgets copied indicators that went off before now. It returns
// how many were dropped.
func (d *Display) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for id, until := range d.copied {
		if !now.Before(until) {
			delete(d.copied, id)
			n++
		}
	}
	return n
}

// Download returns t as transcript.txt with exactly t's text.
func (d *Display) Download(ctx context.Context, sessionID string, t *transcript.Transcript) (Attachment, error) {
	if t == nil {
		return Attachment{}, apperrors.NotFound("transcript")
	}
	d.notifier.Notify(ctx, sessionID, notice.Success(notice.Downloaded))
	return Attachment{Filename: Filename, ContentType: ContentType, Body: []byte(t.Text)}, nil
}
