package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/singgah-pos/internal/domains/assistant/domain"
	"github.com/Apurer/singgah-pos/internal/domains/assistant/ports"
)

const tracerName = "github.com/Apurer/singgah-pos/internal/domains/assistant/adapters/observability/generator"

// Generator decorates a text-generation backend with spans, logs and call metrics.
type Generator struct {
	inner   ports.Generator
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics generatorMetrics
}

type Option func(*Generator)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(g *Generator) {
		g.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(g *Generator) {
		g.metrics = newGeneratorMetrics(m)
	}
}

func New(inner ports.Generator, opts ...Option) ports.Generator {
	g := &Generator{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.tracer == nil {
		g.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return g
}

func (g *Generator) Recommend(ctx context.Context, query string, menu []domain.MenuEntry) ([]domain.Suggestion, error) {
	ctx, span := g.tracer.Start(ctx, "Assistant.Recommend", trace.WithAttributes(attribute.Int("menu.items", len(menu))))
	defer span.End()

	start := time.Now()
	result, err := g.inner.Recommend(ctx, query, menu)
	g.metrics.record(ctx, "recommend", time.Since(start), err)
	if err != nil {
		return nil, g.handleError(ctx, span, err, "recommendation call failed")
	}
	span.SetAttributes(attribute.Int("suggestions.count", len(result)))
	return result, nil
}

func (g *Generator) Advise(ctx context.Context, orders []domain.OrderSummary) ([]string, error) {
	ctx, span := g.tracer.Start(ctx, "Assistant.Advise", trace.WithAttributes(attribute.Int("orders.count", len(orders))))
	defer span.End()

	start := time.Now()
	result, err := g.inner.Advise(ctx, orders)
	g.metrics.record(ctx, "advise", time.Since(start), err)
	if err != nil {
		return nil, g.handleError(ctx, span, err, "advice call failed")
	}
	span.SetAttributes(attribute.Int("tips.count", len(result)))
	return result, nil
}

func (g *Generator) handleError(ctx context.Context, span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	g.logger.LogAttrs(ctx, slog.LevelWarn, msg, slog.String("error", err.Error()))
	return err
}

type generatorMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

func newGeneratorMetrics(m metric.Meter) generatorMetrics {
	if m == nil {
		return generatorMetrics{}
	}
	calls, _ := m.Int64Counter("assistant.generator.calls", metric.WithDescription("Calls to the text-generation backend"))
	duration, _ := m.Float64Histogram("assistant.generator.duration", metric.WithDescription("Generation latency"), metric.WithUnit("s"))
	return generatorMetrics{calls: calls, duration: duration}
}

func (m generatorMetrics) record(ctx context.Context, op string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(attribute.String("operation", op), attribute.String("outcome", outcome))
	if m.calls != nil {
		m.calls.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

var _ ports.Generator = (*Generator)(nil)
