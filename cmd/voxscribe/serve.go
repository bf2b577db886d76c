package main

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/voxscribe/bootstrap"
	"github.com/kbukum/voxscribe/display"
	"github.com/kbukum/voxscribe/encryption"
	"github.com/kbukum/voxscribe/form"
	"github.com/kbukum/voxscribe/kafka"
	"github.com/kbukum/voxscribe/kafka/producer"
	"github.com/kbukum/voxscribe/notice"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/redis"
	"github.com/kbukum/voxscribe/server"
	"github.com/kbukum/voxscribe/session"
	"github.com/kbukum/voxscribe/sse"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/web"
)

const (
	eventsPath    = "/api/events"
	pruneInterval = 10 * time.Minute
)

func runServe(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to config.yml")
	envPath := fs.String("env", "", "path to a .env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, *envPath)
	if err != nil {
		return err
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	if _, err := wire(app); err != nil {
		return err
	}
	return app.Run(ctx)
}

// wire registers every component in start order: telemetry, the event
// hub, storage, the event publisher, then the HTTP server, which it
// returns.
func wire(app *bootstrap.App[*Config]) (*server.Server, error) {
	cfg, log := app.Cfg, app.Logger

	obs, err := observability.NewComponent(cfg.Observability, cfg.Name, cfg.Version, cfg.Environment, log)
	if err != nil {
		return nil, err
	}
	hub := sse.NewComponent(eventsPath, log)
	if err := app.RegisterComponent(obs); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(hub); err != nil {
		return nil, err
	}

	notifier := notice.NewStream(hub.Hub(), log)
	disp := display.New(display.NewSystem(), notifier)

	backend, err := storeBackend(app)
	if err != nil {
		return nil, err
	}
	storeOpts := []transcript.Option{
		transcript.WithTTL(cfg.Store.TTL),
		transcript.WithLogger(log),
		transcript.WithListener(web.RefreshListener(hub.Hub(), disp, log)),
	}
	if cfg.Store.EncryptionKey != "" {
		sealer, err := encryption.New(cfg.Store.EncryptionKey)
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, transcript.WithSealer(sealer))
	}
	if cfg.Kafka.Enabled {
		listener, err := wireKafka(app)
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, transcript.WithListener(listener))
	}
	store := transcript.NewStore(backend, storeOpts...)

	svc, err := newTranscriptionService(cfg, obs.Metrics(), log)
	if err != nil {
		return nil, err
	}
	f := form.New(svc, store, notifier,
		form.WithLogger(log),
		form.WithRecordingTimeout(cfg.Session.RecordingTimeout),
	)

	sessions, err := session.NewManager(cfg.Session, log)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(obs.Metrics())
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)
	handlers, err := web.NewHandlers(web.Deps{
		Form:           f,
		Display:        disp,
		Store:          store,
		Sessions:       sessions,
		Hub:            hub.Hub(),
		MaxUploadBytes: svc.MaxBytes(),
		RateLimit:      cfg.Server.RateLimit,
		Log:            log,
	})
	if err != nil {
		return nil, err
	}
	handlers.Register(srv.GinEngine())
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}

	prunePerSession(app, f, store, disp, cfg.Session.TTL)
	return srv, nil
}

func storeBackend(app *bootstrap.App[*Config]) (provider.ContextStore[transcript.Record], error) {
	cfg := app.Cfg
	if cfg.Store.Backend != transcript.BackendRedis {
		return transcript.NewMemoryBackend(), nil
	}
	rc, err := redis.NewComponent(cfg.Redis, app.Logger)
	if err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(rc); err != nil {
		return nil, err
	}
	return transcript.NewRedisBackend(rc.Client(), cfg.Redis.KeyPrefix+":transcript"), nil
}

// wireKafka registers the producer and returns the store listener that
// publishes transcript events. Pending publishes finish before the
// producer closes.
func wireKafka(app *bootstrap.App[*Config]) (transcript.Listener, error) {
	cfg, log := app.Cfg, app.Logger
	prod, err := producer.New(cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	comp := kafka.NewComponent(cfg.Kafka, log)
	comp.SetProducer(prod)
	if err := app.RegisterComponent(comp); err != nil {
		return nil, err
	}

	pub := producer.NewTranscriptPublisher(producer.NewSinkProvider("kafka", prod), cfg.Kafka.Topic, log)
	app.OnStop(func(context.Context) error {
		pub.Wait()
		return nil
	})
	return pub.Listener(), nil
}

// prunePerSession drops idle form state, expired transcript slots and
// stale copied indicators on a ticker for the life of the app.
func prunePerSession(app *bootstrap.App[*Config], f *form.Form, store *transcript.Store, disp *display.Display, idle time.Duration) {
	done := make(chan struct{})
	app.OnReady(func(context.Context) error {
		go func() {
			ticker := time.NewTicker(pruneInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case now := <-ticker.C:
					sessions := f.Prune(now.Add(-idle))
					slots := store.Sweep(now)
					copied := disp.Prune(now)
					if sessions+slots+copied > 0 {
						app.Logger.Debug("pruned session state", map[string]interface{}{
							"sessions":    sessions,
							"transcripts": slots,
							"copied":      copied,
						})
					}
				}
			}
		}()
		return nil
	})
	app.OnStop(func(context.Context) error {
		close(done)
		return nil
	})
}
