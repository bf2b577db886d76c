package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/voxscribe/dictation"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/notice"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/transcription"
)

const limit = 15 * 1024 * 1024

type fakeAction struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (a *fakeAction) MaxBytes() int64 { return limit }

func (a *fakeAction) Transcribe(ctx context.Context, up *transcription.Upload) (string, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.started != nil {
		close(a.started)
		<-a.release
	}
	return a.text, a.err
}

func (a *fakeAction) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type fixture struct {
	form    *Form
	action  *fakeAction
	store   *transcript.Store
	notices *notice.Recorder
}

func newFixture(action *fakeAction) *fixture {
	store := transcript.NewStore(transcript.NewMemoryBackend())
	rec := &notice.Recorder{}
	return &fixture{form: New(action, store, rec), action: action, store: store, notices: rec}
}

func (fx *fixture) text(t *testing.T, session string) *string {
	t.Helper()
	tr, err := fx.store.Get(context.Background(), session)
	if err != nil {
		t.Fatal(err)
	}
	if tr == nil {
		return nil
	}
	return &tr.Text
}

func TestSubmit_Success(t *testing.T) {
	fx := newFixture(&fakeAction{text: "Hello\nworld"})
	text, err := fx.form.Submit(context.Background(), "s1", &transcription.Upload{Data: []byte("audio")})
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hello\nworld" {
		t.Errorf("text = %q", text)
	}
	if got := fx.text(t, "s1"); got == nil || *got != "Hello\nworld" {
		t.Errorf("stored = %v", got)
	}
	n := fx.notices.Notices()
	if len(n) != 1 || n[0].Notice != notice.Success(notice.AudioTranscribed) {
		t.Errorf("notices = %+v", n)
	}
}

func TestSubmit_OversizedNeverCallsAction(t *testing.T) {
	fx := newFixture(&fakeAction{text: "x"})
	_ = fx.store.Set(context.Background(), "s1", transcript.Transcript{Text: "before"})

	_, err := fx.form.Submit(context.Background(), "s1", &transcription.Upload{Size: limit + 1, Data: []byte("a")})
	if !apperrors.Is(err, apperrors.ErrCodeFileTooLarge) {
		t.Fatalf("err = %v", err)
	}
	if fx.action.Calls() != 0 {
		t.Error("action called for oversized file")
	}
	if got := fx.text(t, "s1"); *got != "before" {
		t.Errorf("store changed to %q", *got)
	}
	n := fx.notices.Notices()
	if len(n) != 1 || n[0].Notice != notice.Warning(notice.FileTooLarge) {
		t.Errorf("notices = %+v", n)
	}
}

func TestSubmit_FailureLeavesStore(t *testing.T) {
	fx := newFixture(&fakeAction{err: apperrors.ExternalServiceError("gemini", errors.New("boom"))})
	_ = fx.store.Set(context.Background(), "s1", transcript.Transcript{Text: "keep me"})

	if _, err := fx.form.Submit(context.Background(), "s1", &transcription.Upload{Data: []byte("a")}); err == nil {
		t.Fatal("expected error")
	}
	if got := fx.text(t, "s1"); *got != "keep me" {
		t.Errorf("store = %q", *got)
	}
	if fx.notices.Count(notice.KindError) != 1 || fx.notices.Count(notice.KindSuccess) != 0 {
		t.Errorf("notices = %+v", fx.notices.Notices())
	}
}

func TestStartVoice_Unsupported(t *testing.T) {
	fx := newFixture(&fakeAction{})
	_, err := fx.form.StartVoice(context.Background(), "s1", dictation.NewBrowser(false))
	if !apperrors.Is(err, apperrors.ErrCodeSpeechUnsupported) {
		t.Fatalf("err = %v", err)
	}
	n := fx.notices.Notices()
	if len(n) != 1 || n[0].Message != notice.SpeechUnsupported {
		t.Errorf("notices = %+v", n)
	}
	if fx.text(t, "s1") != nil {
		t.Error("store changed")
	}
	if st := fx.form.Status("s1"); st.State != dictation.StateIdle {
		t.Errorf("state = %s", st.State)
	}
}

func TestVoice_ResultStoresFirstAlternative(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(&fakeAction{})
	settings, err := fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true))
	if err != nil {
		t.Fatal(err)
	}
	if settings != dictation.DefaultSettings() {
		t.Errorf("settings = %+v", settings)
	}
	if !fx.form.Status("s1").Recording {
		t.Fatal("expected recording")
	}

	_, err = fx.form.HandleVoiceEvent(ctx, "s1", dictation.Event{
		Type:    dictation.EventResult,
		Results: [][]dictation.Alternative{{{Transcript: "take a note"}, {Transcript: "bake a note"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := fx.text(t, "s1"); got == nil || *got != "take a note" {
		t.Errorf("stored = %v", got)
	}
	if _, err := fx.form.HandleVoiceEvent(ctx, "s1", dictation.Event{Type: dictation.EventEnd}); err != nil {
		t.Fatal(err)
	}
	if fx.notices.Count(notice.KindSuccess) != 1 {
		t.Errorf("notices = %+v", fx.notices.Notices())
	}
}

func TestVoice_ErrorLeavesStore(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(&fakeAction{})
	_ = fx.store.Set(ctx, "s1", transcript.Transcript{Text: "old"})
	_, _ = fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true))

	out, err := fx.form.HandleVoiceEvent(ctx, "s1", dictation.Event{Type: dictation.EventError, Error: "not-allowed"})
	if err != nil {
		t.Fatal(err)
	}
	if out.To != dictation.StateFailed {
		t.Errorf("state = %s", out.To)
	}
	if got := fx.text(t, "s1"); *got != "old" {
		t.Errorf("store = %q", *got)
	}
	n := fx.notices.Notices()
	if len(n) != 1 || n[0].Notice != notice.Error(notice.VoiceFailed) {
		t.Errorf("notices = %+v", n)
	}
}

func TestConflict_UploadWhileRecording(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(&fakeAction{text: "upload"})
	_, _ = fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true))

	_, err := fx.form.Submit(ctx, "s1", &transcription.Upload{Data: []byte("a")})
	if !apperrors.Is(err, apperrors.ErrCodeConflict) {
		t.Fatalf("err = %v", err)
	}
	if fx.action.Calls() != 0 {
		t.Error("action called during recording")
	}

	// Another session is not blocked.
	if _, err := fx.form.Submit(ctx, "s2", &transcription.Upload{Data: []byte("a")}); err != nil {
		t.Fatalf("other session blocked: %v", err)
	}
}

func TestConflict_VoiceWhileUploading(t *testing.T) {
	ctx := context.Background()
	action := &fakeAction{text: "from upload", started: make(chan struct{}), release: make(chan struct{})}
	fx := newFixture(action)

	done := make(chan error, 1)
	go func() {
		_, err := fx.form.Submit(ctx, "s1", &transcription.Upload{Data: []byte("a")})
		done <- err
	}()
	<-action.started

	if _, err := fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true)); !apperrors.Is(err, apperrors.ErrCodeConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if _, err := fx.form.Submit(ctx, "s1", &transcription.Upload{Data: []byte("b")}); !apperrors.Is(err, apperrors.ErrCodeConflict) {
		t.Fatalf("second upload err = %v, want conflict", err)
	}

	close(action.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got := fx.text(t, "s1"); *got != "from upload" {
		t.Errorf("store = %q", *got)
	}
	if st := fx.form.Status("s1"); st.State != dictation.StateIdle || st.Uploading {
		t.Errorf("status = %+v", st)
	}
}

func TestPrune(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fx := newFixture(&fakeAction{})
	fx.form.now = func() time.Time { return now }

	fx.form.Status("old")
	now = now.Add(time.Hour)
	fx.form.Status("new")

	if n := fx.form.Prune(now.Add(-time.Minute)); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if _, ok := fx.form.sessions["new"]; !ok {
		t.Error("recent session pruned")
	}
}

func TestAbandonedRecordingExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fx := newFixture(&fakeAction{text: "after"})
	fx.form.now = func() time.Time { return now }

	if _, err := fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true)); err != nil {
		t.Fatal(err)
	}

	now = now.Add(DefaultRecordingTimeout - time.Second)
	if _, err := fx.form.Submit(ctx, "s1", &transcription.Upload{Data: []byte("a")}); !apperrors.Is(err, apperrors.ErrCodeConflict) {
		t.Fatalf("before timeout err = %v, want conflict", err)
	}

	now = now.Add(2 * time.Second)
	if st := fx.form.Status("s1"); st.State != dictation.StateIdle {
		t.Fatalf("state = %s, want idle", st.State)
	}
	if _, err := fx.form.Submit(ctx, "s1", &transcription.Upload{Data: []byte("a")}); err != nil {
		t.Fatalf("upload after timeout: %v", err)
	}
	if got := fx.text(t, "s1"); got == nil || *got != "after" {
		t.Errorf("stored = %v", got)
	}
}

func TestAbandonedRecordingRestarts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fx := newFixture(&fakeAction{})
	fx.form.now = func() time.Time { return now }

	_, _ = fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true))
	if _, err := fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true)); !apperrors.Is(err, apperrors.ErrCodeInvalidTransition) {
		t.Fatalf("restart err = %v, want invalid transition", err)
	}

	now = now.Add(DefaultRecordingTimeout)
	if _, err := fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true)); err != nil {
		t.Fatalf("restart after timeout: %v", err)
	}
	if !fx.form.Status("s1").Recording {
		t.Error("expected recording")
	}
}

func TestPrune_ExpiresAbandonedRecording(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fx := newFixture(&fakeAction{})
	fx.form.now = func() time.Time { return now }

	_, _ = fx.form.StartVoice(context.Background(), "s1", dictation.NewBrowser(true))
	now = now.Add(24 * time.Hour)

	if n := fx.form.Prune(now.Add(-time.Hour)); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
}

func TestRecordingTimeoutDisabled(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := transcript.NewStore(transcript.NewMemoryBackend())
	f := New(&fakeAction{}, store, &notice.Recorder{},
		WithClock(func() time.Time { return now }), WithRecordingTimeout(0))

	_, _ = f.StartVoice(context.Background(), "s1", dictation.NewBrowser(true))
	now = now.Add(48 * time.Hour)
	if !f.Status("s1").Recording {
		t.Error("recording expired with expiry disabled")
	}
}

func TestAbandon(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(&fakeAction{text: "upload"})

	if fx.form.Abandon(ctx, "s1") {
		t.Error("abandoned an unknown session")
	}
	_, _ = fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true))
	if !fx.form.Abandon(ctx, "s1") {
		t.Fatal("recording not abandoned")
	}
	if fx.form.Abandon(ctx, "s1") {
		t.Error("abandoned an idle session")
	}
	if _, err := fx.form.Submit(ctx, "s1", &transcription.Upload{Data: []byte("a")}); err != nil {
		t.Fatalf("upload after abandon: %v", err)
	}
	if fx.notices.Count(notice.KindError) != 0 {
		t.Errorf("notices = %+v", fx.notices.Notices())
	}
}

func TestVoice_ResultAfterEndIsRejected(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(&fakeAction{})
	_, _ = fx.form.StartVoice(ctx, "s1", dictation.NewBrowser(true))
	_, _ = fx.form.HandleVoiceEvent(ctx, "s1", dictation.Event{Type: dictation.EventEnd})

	_, err := fx.form.HandleVoiceEvent(ctx, "s1", dictation.Event{
		Type:    dictation.EventResult,
		Results: [][]dictation.Alternative{{{Transcript: "late"}}},
	})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidTransition) {
		t.Fatalf("err = %v", err)
	}
	if fx.text(t, "s1") != nil {
		t.Error("late result stored")
	}
}
