package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/server/middleware"
)

// Claims identify one browser session. Subject is the session id.
type Claims struct {
	gojwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	cfg    Config
	secret []byte
	now    func() time.Time
	log    *logger.Logger
}

// NewManager creates a Manager. An empty secret is replaced with 32 random
// bytes.
func NewManager(cfg Config, log *logger.Logger) (*Manager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("session")

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("session: generate secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		log.Warn("no session secret configured, sessions reset on restart")
	}
	return &Manager{cfg: cfg, secret: secret, now: time.Now, log: log}, nil
}

// Issue creates a new session id and its signed token.
func (m *Manager) Issue() (id, token string, err error) {
	id = uuid.NewString()
	now := m.now()
	claims := &Claims{RegisteredClaims: gojwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   id,
		Issuer:    m.cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(m.cfg.TTL)),
	}}
	token, err = gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("session: sign token: %w", err)
	}
	return id, token, nil
}

// Parse verifies token and returns its session id.
func (m *Manager) Parse(token string) (string, error) {
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims,
		func(*gojwt.Token) (interface{}, error) { return m.secret, nil },
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithIssuer(m.cfg.Issuer),
		gojwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("session: parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("session: invalid token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("session: bad session id: %w", err)
	}
	return claims.Subject, nil
}

// Middleware resolves the session from the cookie, or starts a fresh one
// when the cookie is missing or invalid, and stores the id in the request
// context.
func (m *Manager) Middleware() middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(m.cfg.CookieName); err == nil {
				if id, err = m.Parse(c.Value); err != nil {
					m.log.WithContext(r.Context()).Debug("session cookie rejected", logger.ErrorFields("parse", err))
				}
			}
			if id == "" {
				newID, token, err := m.Issue()
				if err != nil {
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				id = newID
				http.SetCookie(w, m.cookie(token))
			}
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}

func (m *Manager) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// WithID stores a session id in ctx under logger.SessionIDKey, so log
// lines carry it.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, logger.SessionIDKey, id)
}

// ID returns the session id in ctx, or "".
func ID(ctx context.Context) string {
	id, _ := ctx.Value(logger.SessionIDKey).(string)
	return id
}
