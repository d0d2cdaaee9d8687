package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	PipelineRuns      metric.Int64Counter
	StageDuration     metric.Float64Histogram
	ProviderFallbacks metric.Int64Counter
	LiveConnections   metric.Int64Counter
	RateLimitHits     metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("rag-visualizer-backend")

	pipelineRuns, err := meter.Int64Counter(
		"pipeline.runs.total",
		metric.WithDescription("Total pipeline runs by kind and outcome"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline.stage.duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	providerFallbacks, err := meter.Int64Counter(
		"provider.fallbacks.total",
		metric.WithDescription("Provider calls served by the mock fallback"),
	)
	if err != nil {
		return nil, err
	}

	liveConnections, err := meter.Int64Counter(
		"live.connections.total",
		metric.WithDescription("Websocket connections accepted"),
	)
	if err != nil {
		return nil, err
	}

	rateLimitHits, err := meter.Int64Counter(
		"ratelimit.hits.total",
		metric.WithDescription("Requests rejected by rate limiting"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		PipelineRuns:      pipelineRuns,
		StageDuration:     stageDuration,
		ProviderFallbacks: providerFallbacks,
		LiveConnections:   liveConnections,
		RateLimitHits:     rateLimitHits,
	}, nil
}

// RecordRun counts one pipeline run by kind and outcome.
func (m *Metrics) RecordRun(ctx context.Context, pipeline, outcome string) {
	if m == nil {
		return
	}
	m.PipelineRuns.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("pipeline", pipeline),
			attribute.String("outcome", outcome),
		))
}

// RecordConnection counts one accepted live connection.
func (m *Metrics) RecordConnection(ctx context.Context) {
	if m == nil {
		return
	}
	m.LiveConnections.Add(ctx, 1)
}

// RecordRateLimit counts one rejected request or trigger.
func (m *Metrics) RecordRateLimit(ctx context.Context, surface string) {
	if m == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("surface", surface)))
}

// RecordStage records one completed stage duration.
func (m *Metrics) RecordStage(ctx context.Context, pipeline, stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("pipeline", pipeline),
			attribute.String("stage", stage),
		))
}

// RecordFallback counts one mock-fallback provider call.
func (m *Metrics) RecordFallback(ctx context.Context, operation, reason string) {
	if m == nil {
		return
	}
	m.ProviderFallbacks.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("reason", reason),
		))
}
