package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/voxscribe/component"
	"github.com/kbukum/voxscribe/logger"
)

// Component manages the tracer and meter providers. It always hands out a
// usable Metrics; exporters are only started when the config enables them.
type Component struct {
	cfg     Config
	service string
	version string
	env     string
	log     *logger.Logger

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *Metrics
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates an observability component. Instruments are created
// on the global meter right away; the otel global delegates them to the
// real provider once Start installs it.
func NewComponent(cfg Config, service, version, env string, log *logger.Logger) (*Component, error) {
	if log == nil {
		log = logger.Nop()
	}
	metrics, err := NewMetrics(Meter(service))
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	return &Component{
		cfg: cfg, service: service, version: version, env: env,
		log:     log.WithComponent("observability"),
		metrics: metrics,
	}, nil
}

func (c *Component) Name() string { return "observability" }

func (c *Component) Start(ctx context.Context) error {
	if c.cfg.Enabled {
		tp, err := InitTracer(ctx, TracerConfig{
			ServiceName: c.service, ServiceVersion: c.version, Environment: c.env,
			Endpoint: c.cfg.Endpoint, Insecure: c.cfg.Insecure, SampleRate: c.cfg.SampleRate,
		})
		if err != nil {
			return err
		}
		mp, err := InitMeter(ctx, MeterConfig{
			ServiceName: c.service, ServiceVersion: c.version, Environment: c.env,
			Endpoint: c.cfg.Endpoint, Insecure: c.cfg.Insecure, Interval: c.cfg.MetricInterval,
		})
		if err != nil {
			_ = tp.Shutdown(ctx)
			return err
		}
		c.tp, c.mp = tp, mp
		c.log.Info("telemetry export started", map[string]interface{}{"endpoint": c.cfg.Endpoint})
	}
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := "export disabled"
	if c.cfg.Enabled {
		details = "otlp http " + c.cfg.Endpoint
	}
	return component.Description{Name: "Telemetry", Type: "otel", Details: details}
}

// Metrics returns the service instruments.
func (c *Component) Metrics() *Metrics { return c.metrics }
