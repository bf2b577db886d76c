package main

import (
	"errors"

	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/transcription"
	"github.com/kbukum/voxscribe/transcription/gemini"
	"github.com/kbukum/voxscribe/transcription/openai"
	"github.com/kbukum/voxscribe/transcription/whisper"
	"github.com/kbukum/voxscribe/util"
)

// newTranscriptionService builds the configured backend. A backend that
// cannot be created, such as gemini without GEMINI_API_KEY, is logged and
// left out; requests then fail with SERVICE_UNAVAILABLE instead of the
// server refusing to start.
func newTranscriptionService(cfg *Config, metrics *observability.Metrics, log *logger.Logger) (*transcription.Service, error) {
	manager := transcription.NewManager(log)
	manager.Register(gemini.ProviderName, gemini.Factory())
	manager.Register(openai.ProviderName, openai.Factory())
	manager.Register(whisper.ProviderName, whisper.Factory())

	name := cfg.Transcription.Provider
	if err := manager.Initialize(name, cfg.providerSettings(name)); err != nil {
		if !errors.Is(err, gemini.ErrNoAPIKey) && !errors.Is(err, openai.ErrNoAPIKey) {
			return nil, err
		}
		log.Warn("transcription backend has no API key, uploads will fail", map[string]interface{}{
			logger.FieldProvider: name,
		})
		return transcription.NewService(manager, cfg.Transcription, transcription.WithMetrics(metrics), transcription.WithLogger(log)), nil
	}

	p, err := manager.GetByName(name)
	if err != nil {
		return nil, err
	}
	manager.Add(transcription.Decorate(p, cfg.Transcription, cfg.Name, metrics, log))
	if err := manager.SetDefault(name); err != nil {
		return nil, err
	}
	log.Info("transcription backend ready", map[string]interface{}{
		logger.FieldProvider: name,
		"max_upload":         util.FormatSize(cfg.Transcription.MaxBytes()),
	})
	return transcription.NewService(manager, cfg.Transcription, transcription.WithMetrics(metrics), transcription.WithLogger(log)), nil
}
