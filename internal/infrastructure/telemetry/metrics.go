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
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/infrastructure/config"
)

// MeterProvider wraps the OTLP meter provider with lifecycle management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	cfg      config.TelemetryConfig
	logger   *zap.Logger
}

// NewMeterProvider configures the global meter provider from config
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{cfg: cfg, logger: logger.Named("metrics")}

	if !cfg.Enabled {
		mp.logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP metrics exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry resource: %w", err)
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(60*time.Second)),
		),
	)
	otel.SetMeterProvider(mp.provider)

	mp.logger.Info("Meter provider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName))
	return mp, nil
}

// Shutdown flushes pending metrics and releases the exporter
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("Error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("shutting down meter provider: %w", err)
	}
	mp.logger.Info("Meter provider shut down")
	return nil
}

// AuditMetrics exposes counters for the audit pipeline
type AuditMetrics struct {
	auditsStarted   metric.Int64Counter
	auditsCompleted metric.Int64Counter
	auditsFailed    metric.Int64Counter
	fixesGenerated  metric.Int64Counter
	quotaRefusals   metric.Int64Counter
}

// NewAuditMetrics registers the audit pipeline instruments on the global meter
func NewAuditMetrics() (*AuditMetrics, error) {
	meter := otel.Meter("sitepulse.audit")

	auditsStarted, err := meter.Int64Counter("audits.started",
		metric.WithDescription("Audits that entered the running state"))
	if err != nil {
		return nil, err
	}
	auditsCompleted, err := meter.Int64Counter("audits.completed",
		metric.WithDescription("Audits that finished with a score"))
	if err != nil {
		return nil, err
	}
	auditsFailed, err := meter.Int64Counter("audits.failed",
		metric.WithDescription("Audits that ended in the failed state"))
	if err != nil {
		return nil, err
	}
	fixesGenerated, err := meter.Int64Counter("fixes.generated",
		metric.WithDescription("AI fixes persisted, by provider"))
	if err != nil {
		return nil, err
	}
	quotaRefusals, err := meter.Int64Counter("quota.refusals",
		metric.WithDescription("Operations refused by quota or capacity checks"))
	if err != nil {
		return nil, err
	}

	return &AuditMetrics{
		auditsStarted:   auditsStarted,
		auditsCompleted: auditsCompleted,
		auditsFailed:    auditsFailed,
		fixesGenerated:  fixesGenerated,
		quotaRefusals:   quotaRefusals,
	}, nil
}

// RecordAuditStarted counts an audit entering the running state
func (m *AuditMetrics) RecordAuditStarted(ctx context.Context, auditType string) {
	m.auditsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("audit.type", auditType)))
}

// RecordAuditCompleted counts a finished audit
func (m *AuditMetrics) RecordAuditCompleted(ctx context.Context, auditType string) {
	m.auditsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("audit.type", auditType)))
}

// RecordAuditFailed counts a failed audit
func (m *AuditMetrics) RecordAuditFailed(ctx context.Context, auditType string) {
	m.auditsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("audit.type", auditType)))
}

// RecordFixGenerated counts a persisted AI fix by winning provider
func (m *AuditMetrics) RecordFixGenerated(ctx context.Context, provider string) {
	m.fixesGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("fix.provider", provider)))
}

// RecordQuotaRefusal counts a quota or capacity refusal by metric key
func (m *AuditMetrics) RecordQuotaRefusal(ctx context.Context, metricKey string) {
	m.quotaRefusals.Add(ctx, 1, metric.WithAttributes(attribute.String("quota.metric", metricKey)))
}
