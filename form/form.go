package form

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/voxscribe/dictation"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/notice"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/transcription"
)

// ConflictMessage is returned when a session already has an operation in
// flight.
const ConflictMessage = "Another transcription is already in progress"

// DefaultRecordingTimeout bounds how long a session stays in Recording
// without a result, error or end from the recognizer.
const DefaultRecordingTimeout = 2 * time.Minute

// Transcriber is the transcription action.
type Transcriber interface {
	Transcribe(ctx context.Context, up *transcription.Upload) (string, error)
	MaxBytes() int64
}

// TranscriptWriter replaces a session's transcript.
type TranscriptWriter interface {
	Set(ctx context.Context, sessionID string, t transcript.Transcript) error
}

// Form runs the two input paths of the page: file upload and voice
// dictation. Each session has at most one operation in flight; the
// second one fails with CONFLICT. Sessions never block each other.
type Form struct {
	action   Transcriber
	store    TranscriptWriter
	notifier notice.Notifier
	log      *logger.Logger
	now      func() time.Time
	// recordingTimeout of zero disables expiry.
	recordingTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	uploading      bool
	machine        *dictation.Machine
	settings       dictation.Settings
	touched        time.Time
	recordingSince time.Time
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the form's logger.
func WithLogger(l *logger.Logger) Option { return func(f *Form) { f.log = l } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(f *Form) { f.now = now } }

// WithRecordingTimeout sets how long an abandoned recording holds the
// session before it is ended. Zero disables expiry.
func WithRecordingTimeout(d time.Duration) Option {
	return func(f *Form) { f.recordingTimeout = d }
}

// New creates a Form. All collaborators are required.
func New(action Transcriber, store TranscriptWriter, notifier notice.Notifier, opts ...Option) *Form {
	f := &Form{
		action:   action,
		store:    store,
		notifier: notifier,
		log:      logger.Nop(),
		now:      time.Now,
		sessions: make(map[string]*session),

		recordingTimeout: DefaultRecordingTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.WithComponent("form")
	return f
}

// must be called with f.mu held.
func (f *Form) session(id string) *session {
	s, ok := f.sessions[id]
	if !ok {
		s = &session{machine: dictation.NewMachine(), settings: dictation.DefaultSettings()}
		f.sessions[id] = s
	}
	now := f.now()
	f.expire(id, s, now)
	s.touched = now
	return s
}

// expire ends a recording that has outlived the recording timeout, so a
// closed tab or a lost connection cannot hold the session forever. Must
// be called with f.mu held.
func (f *Form) expire(id string, s *session, now time.Time) bool {
	if f.recordingTimeout <= 0 || !s.machine.Active() || now.Sub(s.recordingSince) < f.recordingTimeout {
		return false
	}
	if _, err := s.machine.Apply(dictation.Event{Type: dictation.EventEnd}); err != nil {
		return false
	}
	f.log.Info("abandoned recording ended", map[string]interface{}{
		logger.FieldSessionID: id,
		"since":               s.recordingSince.Format(time.RFC3339),
	})
	return true
}

// CheckFile rejects an upload over the size limit with a warning notice,
// before anything is sent anywhere.
func (f *Form) CheckFile(ctx context.Context, sessionID string, up *transcription.Upload) error {
	if up == nil || len(up.Data) == 0 {
		return apperrors.NoFile()
	}
	size := max(up.Size, int64(len(up.Data)))
	if limit := f.action.MaxBytes(); size > limit {
		f.notifier.Notify(ctx, sessionID, notice.Warning(notice.FileTooLarge))
		return apperrors.FileTooLarge(size, limit)
	}
	return nil
}

// Submit transcribes an upload and stores the text. On failure the
// stored transcript is left as it was.
func (f *Form) Submit(ctx context.Context, sessionID string, up *transcription.Upload) (string, error) {
	if err := f.CheckFile(ctx, sessionID, up); err != nil {
		return "", err
	}

	f.mu.Lock()
	s := f.session(sessionID)
	if s.uploading || s.machine.Active() {
		f.mu.Unlock()
		return "", apperrors.Conflict(ConflictMessage)
	}
	s.uploading = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		s.uploading = false
		f.mu.Unlock()
	}()

	log := f.log.WithContext(ctx)
	text, err := f.action.Transcribe(ctx, up)
	if err == nil {
		err = f.store.Set(ctx, sessionID, transcript.Transcript{Text: text, Source: transcript.SourceUpload})
	}
	if err != nil {
		log.Warn("upload transcription failed", logger.ErrorFields("submit", err))
		f.notifier.Notify(ctx, sessionID, notice.Error(notice.AudioFailed))
		return "", err
	}

	f.notifier.Notify(ctx, sessionID, notice.Success(notice.AudioTranscribed))
	return text, nil
}

// StartVoice begins a voice session with rec. An unsupported recognizer
// yields exactly one notice and no state change.
func (f *Form) StartVoice(ctx context.Context, sessionID string, rec dictation.Recognizer) (dictation.Settings, error) {
	if rec == nil || !rec.Supported() {
		f.notifier.Notify(ctx, sessionID, notice.Error(notice.SpeechUnsupported))
		return dictation.Settings{}, apperrors.SpeechUnsupported()
	}

	settings := rec.Settings()
	f.mu.Lock()
	f.session(sessionID).settings = settings
	f.mu.Unlock()

	if _, err := f.HandleVoiceEvent(ctx, sessionID, dictation.Event{Type: dictation.EventStart}); err != nil {
		return dictation.Settings{}, err
	}
	return settings, nil
}

// HandleVoiceEvent applies a recognizer event. A result stores
// results[0][0] and an error leaves the transcript alone; both notify.
func (f *Form) HandleVoiceEvent(ctx context.Context, sessionID string, ev dictation.Event) (dictation.Outcome, error) {
	f.mu.Lock()
	s := f.session(sessionID)
	if ev.Type == dictation.EventStart && s.uploading {
		f.mu.Unlock()
		return dictation.Outcome{}, apperrors.Conflict(ConflictMessage)
	}
	out, err := s.machine.Apply(ev)
	if err == nil && out.To == dictation.StateRecording {
		s.recordingSince = f.now()
	}
	f.mu.Unlock()
	if err != nil {
		return out, err
	}

	log := f.log.WithContext(ctx)
	switch {
	case out.To == dictation.StateCompleted && out.From == dictation.StateRecording:
		if err := f.store.Set(ctx, sessionID, transcript.Transcript{Text: out.Text, Source: transcript.SourceVoice}); err != nil {
			log.Warn("voice transcript not stored", logger.ErrorFields("store", err))
			f.notifier.Notify(ctx, sessionID, notice.Error(notice.VoiceFailed))
			return out, err
		}
		f.notifier.Notify(ctx, sessionID, notice.Success(notice.VoiceTranscribed))
	case out.To == dictation.StateFailed && out.From == dictation.StateRecording:
		log.Info("voice recognition failed", map[string]interface{}{"reason": out.Error})
		f.notifier.Notify(ctx, sessionID, notice.Error(notice.VoiceFailed))
	}
	return out, nil
}

// Abandon ends a recording whose recognizer has gone away. It reports
// whether a recording was ended; other states are left alone.
func (f *Form) Abandon(ctx context.Context, sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || !s.machine.Active() {
		return false
	}
	if _, err := s.machine.Apply(dictation.Event{Type: dictation.EventEnd}); err != nil {
		return false
	}
	f.log.WithContext(ctx).Debug("recording abandoned", map[string]interface{}{logger.FieldSessionID: sessionID})
	return true
}

// Status is the dictation view of a session.
type Status struct {
	State     dictation.State    `json:"state"`
	Recording bool               `json:"recording"`
	Uploading bool               `json:"uploading"`
	Settings  dictation.Settings `json:"settings"`
}

// Status reports a session's dictation state.
func (f *Form) Status(sessionID string) Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.session(sessionID)
	st := s.machine.State()
	return Status{State: st, Recording: st == dictation.StateRecording, Uploading: s.uploading, Settings: s.settings}
}

// Prune drops idle sessions not touched since before. It returns how many
// were dropped.
func (f *Form) Prune(before time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	now := f.now()
	for id, s := range f.sessions {
		f.expire(id, s, now)
		if s.uploading || s.machine.Active() || !s.touched.Before(before) {
			continue
		}
		delete(f.sessions, id)
		n++
	}
	return n
}
