package transcription

import (
	"context"
	"time"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/provider"
)

// Service is the transcription action: validate, pick a backend, make
// exactly one call, return the text untouched. It keeps no state
// between calls.
type Service struct {
	manager  *provider.Manager[Provider]
	maxBytes int64
	prompt   string
	language string
	metrics  *observability.Metrics
	log      *logger.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics records accepted upload sizes.
func WithMetrics(m *observability.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// NewService creates the action over an initialized manager.
func NewService(manager *provider.Manager[Provider], cfg Config, opts ...ServiceOption) *Service {
	cfg.ApplyDefaults()
	s := &Service{
		manager:  manager,
		maxBytes: cfg.MaxBytes(),
		prompt:   cfg.Prompt,
		language: cfg.Language,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("transcription")
	return s
}

// MaxBytes returns the upload limit.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Validate applies the upload rules without calling any backend.
func (s *Service) Validate(up *Upload) error {
	if up == nil || len(up.Data) == 0 {
		return apperrors.NoFile()
	}
	size := max(up.Size, int64(len(up.Data)))
	if size > s.maxBytes {
		return apperrors.FileTooLarge(size, s.maxBytes)
	}
	return nil
}

// Transcribe validates up and returns the backend's text verbatim.
func (s *Service) Transcribe(ctx context.Context, up *Upload) (string, error) {
	if err := s.Validate(up); err != nil {
		return "", err
	}

	p, err := s.manager.Get(ctx)
	if err != nil {
		return "", apperrors.ServiceUnavailable("transcription service").WithCause(err)
	}

	mt := DetectMIME(up.ContentType, up.Data)
	if s.metrics != nil {
		s.metrics.RecordAudioSize(ctx, mt, int64(len(up.Data)))
	}

	start := time.Now()
	res, err := p.Execute(ctx, Request{
		Audio:    up.Data,
		MimeType: mt,
		Filename: up.Filename,
		Prompt:   s.prompt,
		Language: s.language,
	})
	if err != nil {
		return "", classify(p.Name(), err)
	}

	s.log.WithContext(ctx).Info("audio transcribed", map[string]interface{}{
		logger.FieldProvider: p.Name(),
		logger.FieldDuration: time.Since(start).Milliseconds(),
		"mime_type":          mt,
		"bytes":              len(up.Data),
		"chars":              len(res.Text),
	})
	return res.Text, nil
}

// classify maps a backend failure to the error the user sees. A rejected
// key reads as an unavailable service, never as a client auth problem.
func classify(backend string, err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case httpclient.IsTimeout(err):
		return apperrors.Timeout("transcription").WithCause(err)
	case httpclient.IsRateLimit(err):
		return apperrors.RateLimited().WithCause(err)
	case httpclient.IsAuth(err), httpclient.IsConnection(err):
		return apperrors.ServiceUnavailable("transcription service").WithCause(err)
	default:
		return apperrors.ExternalServiceError(backend, err)
	}
}
