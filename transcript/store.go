package transcript

import (
	"context"
	"time"

	"github.com/kbukum/voxscribe/encryption"
	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/redis"
)

// Listener is told about every successful Set.
type Listener func(ctx context.Context, sessionID string, t Transcript)

// Store holds one transcript per session. Set replaces the slot wholesale;
// there is no history and no merge.
type Store struct {
	backend   provider.ContextStore[Record]
	ttl       time.Duration
	sealer    encryption.Sealer
	listeners []Listener
	now       func() time.Time
	log       *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts text at rest, bound to the session id.
func WithSealer(s encryption.Sealer) Option {
	return func(st *Store) { st.sealer = s }
}

// WithTTL expires a slot ttl after its last Set. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(st *Store) { st.ttl = ttl }
}

// WithListener adds a change listener. Listeners run synchronously after
// the write.
func WithListener(l Listener) Option {
	return func(st *Store) { st.listeners = append(st.listeners, l) }
}

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(st *Store) { st.now = now }
}

// WithLogger sets the store's logger.
func WithLogger(l *logger.Logger) Option {
	return func(st *Store) { st.log = l }
}

// NewStore creates a Store over any ContextStore backend.
func NewStore(backend provider.ContextStore[Record], opts ...Option) *Store {
	s := &Store{backend: backend, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("transcript")
	return s
}

// NewMemoryBackend returns the in-process backend.
func NewMemoryBackend() provider.ContextStore[Record] {
	return provider.NewMemoryStore[Record]()
}

// Get returns the session's transcript, or nil when none was set.
func (s *Store) Get(ctx context.Context, sessionID string) (*Transcript, error) {
	rec, err := s.backend.Load(ctx, sessionID)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}
	if rec == nil {
		return nil, nil
	}
	text := rec.Text
	if rec.Sealed {
		if s.sealer == nil {
			return nil, apperrors.StorageError(errSealedNoKey)
		}
		if text, err = s.sealer.Open(rec.Text, sessionID); err != nil {
			return nil, apperrors.StorageError(err)
		}
	}
	return &Transcript{Text: text, Source: rec.Source, UpdatedAt: rec.UpdatedAt}, nil
}

// Set replaces the session's transcript. A zero UpdatedAt is stamped.
func (s *Store) Set(ctx context.Context, sessionID string, t Transcript) error {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = s.now().UTC()
	}
	rec := Record{Text: t.Text, Source: t.Source, UpdatedAt: t.UpdatedAt}
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(t.Text, sessionID)
		if err != nil {
			return apperrors.StorageError(err)
		}
		rec.Text, rec.Sealed = sealed, true
	}
	if err := s.backend.Save(ctx, sessionID, &rec, s.ttl); err != nil {
		return apperrors.StorageError(err)
	}

	s.log.WithContext(ctx).Debug("transcript stored", map[string]interface{}{
		logger.FieldSessionID: sessionID,
		"source":              string(t.Source),
		"chars":               len(t.Text),
	})
	for _, l := range s.listeners {
		l(ctx, sessionID, t)
	}
	return nil
}

// Sweep drops expired slots from backends that keep them in process. It
// returns how many were dropped.
func (s *Store) Sweep(now time.Time) int {
	sw, ok := s.backend.(provider.Sweeper)
	if !ok {
		return 0
	}
	return sw.Sweep(now)
}

// NewRedisBackend stores slots in Redis under prefix.
func NewRedisBackend(client *redis.Client, prefix string) provider.ContextStore[Record] {
	return redis.NewTypedStore[Record](client, prefix)
}
