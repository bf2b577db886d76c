package transcript

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/voxscribe/encryption"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/redis"
)

func TestStore_GetAbsent(t *testing.T) {
	s := NewStore(NewMemoryBackend())
	got, err := s.Get(context.Background(), "s1")
	if err != nil || got != nil {
		t.Fatalf("Get = %v, %v; want nil, nil", got, err)
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend())

	writes := []Transcript{
		{Text: "first", Source: SourceUpload},
		{Text: "  second\n\nwith blank line  ", Source: SourceVoice},
		{Text: "", Source: SourceUpload},
	}
	for _, w := range writes {
		if err := s.Set(ctx, "s1", w); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := s.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil || got.Text != w.Text || got.Source != w.Source {
			t.Fatalf("Get = %+v, want %+v", got, w)
		}
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend())
	_ = s.Set(ctx, "a", Transcript{Text: "alpha"})

	if got, _ := s.Get(ctx, "b"); got != nil {
		t.Fatalf("session b sees %q", got.Text)
	}
}

func TestStore_StampsUpdatedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(NewMemoryBackend(), WithClock(func() time.Time { return now }))
	_ = s.Set(context.Background(), "s1", Transcript{Text: "x"})

	got, _ := s.Get(context.Background(), "s1")
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}
}

func TestStore_Listeners(t *testing.T) {
	var seen []string
	s := NewStore(NewMemoryBackend(),
		WithListener(func(_ context.Context, session string, tr Transcript) {
			seen = append(seen, session+"="+tr.Text)
		}),
	)
	_ = s.Set(context.Background(), "s1", Transcript{Text: "hi"})
	if len(seen) != 1 || seen[0] != "s1=hi" {
		t.Fatalf("listener saw %v", seen)
	}
}

func TestStore_Sealed(t *testing.T) {
	ctx := context.Background()
	sealer, err := encryption.New("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	backend := NewMemoryBackend()
	s := NewStore(backend, WithSealer(sealer))

	if err := s.Set(ctx, "s1", Transcript{Text: "secret words"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, _ := backend.Load(ctx, "s1")
	if !raw.Sealed || strings.Contains(raw.Text, "secret") {
		t.Fatalf("stored plaintext: %+v", raw)
	}
	got, err := s.Get(ctx, "s1")
	if err != nil || got.Text != "secret words" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	// A record sealed for s1 must not open under another session.
	_ = backend.Save(ctx, "s2", raw, 0)
	if _, err := s.Get(ctx, "s2"); !apperrors.Is(err, apperrors.ErrCodeStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}

	plain := NewStore(backend)
	if _, err := plain.Get(ctx, "s1"); err == nil {
		t.Fatal("expected error reading sealed record without a key")
	}
}

func TestStore_Redis(t *testing.T) {
	ctx := context.Background()
	mini := miniredis.RunT(t)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })

	s := NewStore(NewRedisBackend(client, "voxscribe:transcript"), WithTTL(time.Hour))
	if err := s.Set(ctx, "s1", Transcript{Text: "line 1\nline 2", Source: SourceUpload}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mini.Exists("voxscribe:transcript:s1") {
		t.Fatal("expected key in redis")
	}
	got, err := s.Get(ctx, "s1")
	if err != nil || got.Text != "line 1\nline 2" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	mini.FastForward(2 * time.Hour)
	if got, _ := s.Get(ctx, "s1"); got != nil {
		t.Fatal("expected slot to expire with ttl")
	}
}

func TestConfig(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Backend != BackendMemory || c.TTL != 24*time.Hour {
		t.Errorf("defaults = %+v", c)
	}
	c.Backend = "etcd"
	if err := c.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend(), WithTTL(time.Millisecond))
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, id, Transcript{Text: id}); err != nil {
			t.Fatal(err)
		}
	}
	if n := s.Sweep(time.Now().Add(time.Minute)); n != 3 {
		t.Fatalf("swept %d, want 3", n)
	}
	if got, _ := s.Get(ctx, "a"); got != nil {
		t.Errorf("expired slot still readable: %+v", got)
	}
}

func TestStore_SweepRedisIsNoop(t *testing.T) {
	mini := miniredis.RunT(t)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Close() })

	s := NewStore(NewRedisBackend(client, "voxscribe:transcript"), WithTTL(time.Hour))
	_ = s.Set(context.Background(), "s1", Transcript{Text: "kept"})
	if n := s.Sweep(time.Now().Add(48 * time.Hour)); n != 0 {
		t.Errorf("swept %d from redis", n)
	}
	if !mini.Exists("voxscribe:transcript:s1") {
		t.Error("redis key removed")
	}
}
