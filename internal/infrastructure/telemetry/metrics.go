package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates an OTLP-exporting MeterProvider. If telemetry is
// disabled, Meter falls back to the global no-op meter.
func NewMeterProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval == 0 {
		interval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Meter returns a named meter from the provider.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// Attribute keys recorded on wizard metrics
var (
	AttrEventKind = attribute.Key("intake.event_kind")
	AttrStep      = attribute.Key("intake.step")
	AttrOutcome   = attribute.Key("intake.outcome")
)

// WizardMetrics records intake session activity
type WizardMetrics struct {
	sessionsStarted    metric.Int64Counter
	eventsApplied      metric.Int64Counter
	stepsContinued     metric.Int64Counter
	submissions        metric.Int64Counter
	liveSessions       metric.Int64UpDownCounter
	submissionDuration metric.Float64Histogram
}

// NewWizardMetrics registers the wizard instruments on meter
func NewWizardMetrics(meter metric.Meter) (*WizardMetrics, error) {
	var (
		m   WizardMetrics
		err error
	)
	if m.sessionsStarted, err = meter.Int64Counter("intake.sessions.started",
		metric.WithDescription("Intake sessions created"),
		metric.WithUnit("{session}")); err != nil {
		return nil, fmt.Errorf("failed to create counter intake.sessions.started: %w", err)
	}
	if m.eventsApplied, err = meter.Int64Counter("intake.events.applied",
		metric.WithDescription("Wizard events applied to sessions"),
		metric.WithUnit("{event}")); err != nil {
		return nil, fmt.Errorf("failed to create counter intake.events.applied: %w", err)
	}
	if m.stepsContinued, err = meter.Int64Counter("intake.steps.continued",
		metric.WithDescription("Continue attempts by step and outcome"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, fmt.Errorf("failed to create counter intake.steps.continued: %w", err)
	}
	if m.submissions, err = meter.Int64Counter("intake.submissions",
		metric.WithDescription("Submission attempts by outcome"),
		metric.WithUnit("{submission}")); err != nil {
		return nil, fmt.Errorf("failed to create counter intake.submissions: %w", err)
	}
	if m.liveSessions, err = meter.Int64UpDownCounter("intake.sessions.live",
		metric.WithDescription("Sessions currently held in memory"),
		metric.WithUnit("{session}")); err != nil {
		return nil, fmt.Errorf("failed to create updown counter intake.sessions.live: %w", err)
	}
	if m.submissionDuration, err = meter.Float64Histogram("intake.session.duration",
		metric.WithDescription("Time from session start to submission"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(60, 300, 600, 1200, 1800, 3600, 7200)); err != nil {
		return nil, fmt.Errorf("failed to create histogram intake.session.duration: %w", err)
	}
	return &m, nil
}

// SessionStarted counts a new session
func (m *WizardMetrics) SessionStarted(ctx context.Context) {
	m.sessionsStarted.Add(ctx, 1)
	m.liveSessions.Add(ctx, 1)
}

// SessionsDropped records sessions removed from memory
func (m *WizardMetrics) SessionsDropped(ctx context.Context, n int) {
	if n > 0 {
		m.liveSessions.Add(ctx, -int64(n))
	}
}

// EventApplied counts one applied wizard event
func (m *WizardMetrics) EventApplied(ctx context.Context, kind string) {
	m.eventsApplied.Add(ctx, 1, metric.WithAttributes(AttrEventKind.String(kind)))
}

// StepContinued counts a Continue attempt on step
func (m *WizardMetrics) StepContinued(ctx context.Context, step string, advanced bool) {
	m.stepsContinued.Add(ctx, 1, metric.WithAttributes(AttrStep.String(step), AttrOutcome.String(outcome(advanced))))
}

// Submitted counts a submission attempt and, when it succeeded, how long
// the session took
func (m *WizardMetrics) Submitted(ctx context.Context, ok bool, elapsed time.Duration) {
	m.submissions.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome(ok))))
	if ok {
		m.submissionDuration.Record(ctx, elapsed.Seconds())
	}
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
