package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/singgah-pos/internal/domains/assistant/domain"
)

type fakeGenerator struct {
	suggestions []domain.Suggestion
	tips        []string
	err         error
}

func (f fakeGenerator) Recommend(context.Context, string, []domain.MenuEntry) ([]domain.Suggestion, error) {
	return f.suggestions, f.err
}

func (f fakeGenerator) Advise(context.Context, []domain.OrderSummary) ([]string, error) {
	return f.tips, f.err
}

func callCount(t *testing.T, reader *sdkmetric.ManualReader, outcome string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "assistant.generator.calls" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("outcome"); ok && v.AsString() == outcome {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestGenerator_RecordsSpansAndCalls(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	gen := New(fakeGenerator{
		suggestions: []domain.Suggestion{{ItemName: "Americano"}},
		tips:        []string{"Open earlier on weekdays."},
	}, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))

	suggestions, err := gen.Recommend(context.Background(), "bold", []domain.MenuEntry{{Name: "Americano"}})
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
	tips, err := gen.Advise(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, tips, 1)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Assistant.Recommend", spans[0].Name())
	assert.Equal(t, "Assistant.Advise", spans[1].Name())
	assert.Equal(t, int64(2), callCount(t, reader, "ok"))
}

func TestGenerator_ErrorsMarkSpanAndLog(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	boom := errors.New("quota exhausted")

	gen := New(fakeGenerator{err: boom}, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")), WithLogger(logger))

	_, err := gen.Advise(context.Background(), []domain.OrderSummary{{Total: 27500}})
	require.ErrorIs(t, err, boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, int64(1), callCount(t, reader, "error"))
	assert.Contains(t, logs.String(), "advice call failed")
	assert.Contains(t, logs.String(), "quota exhausted")
}

func TestGenerator_NilOptionsFallBackToNoop(t *testing.T) {
	gen := New(fakeGenerator{tips: []string{"tip"}}, WithTracer(nil), WithLogger(nil), WithMeter(nil))
	tips, err := gen.Advise(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"tip"}, tips)
}
