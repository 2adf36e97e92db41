package xmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestProviders(t *testing.T) (*tracetest.InMemoryExporter, *sdkmetric.ManualReader, Observer) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	obs, err := NewOTelObserver(WithTracerProvider(tp), WithMeterProvider(mp), WithInstrumentationName("test"))
	require.NoError(t, err)
	return exporter, reader, obs
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestOTelObserver_Success(t *testing.T) {
	exporter, reader, obs := newTestProviders(t)

	ctx, span := obs.Start(context.Background(), SpanOptions{
		Component: "ximport",
		Operation: "batch",
		Kind:      KindClient,
		Attrs:     []Attr{String("file", "pizza.nt"), Int("statements", 12)},
	})
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
	span.End(Result{Attrs: []Attr{Duration("wait", time.Millisecond)}})
	span.End(Result{Err: errors.New("second end ignored")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "ximport.batch", spans[0].Name)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("file", "pizza.nt"))
	assert.Contains(t, spans[0].Attributes, attribute.Int64("wait", int64(time.Millisecond)))

	metrics := collect(t, reader)
	total, ok := metrics[metricOperationTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(1), total.DataPoints[0].Value)
	status, _ := total.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "ok", status.AsString())

	_, ok = metrics[metricOperationDuration].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}

func TestOTelObserver_Error(t *testing.T) {
	exporter, reader, obs := newTestProviders(t)

	_, span := obs.Start(context.Background(), SpanOptions{})
	span.End(Result{Err: errors.New("write conflict")})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "unknown.unknown", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "write conflict", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)

	total := collect(t, reader)[metricOperationTotal].Data.(metricdata.Sum[int64])
	status, _ := total.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "error", status.AsString())
}

func TestOTelObserver_ExplicitErrorStatus(t *testing.T) {
	exporter, _, obs := newTestProviders(t)

	_, span := obs.Start(context.Background(), SpanOptions{Component: "xmongo", Operation: "ping"})
	span.End(Result{Status: StatusError})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "operation failed", spans[0].Status.Description)
}

func TestNewOTelObserver_GlobalProviders(t *testing.T) {
	obs, err := NewOTelObserver(WithTracerProvider(nil), WithMeterProvider(nil), nil)
	require.NoError(t, err)

	_, span := obs.Start(context.Background(), SpanOptions{Component: "x"})
	assert.NotPanics(t, func() { span.End(Result{}) })
}

func TestToOTel(t *testing.T) {
	attrs := toOTel([]Attr{
		{Key: "", Value: "skipped"},
		{Key: "nil", Value: nil},
		String("s", "v"),
		Bool("b", true),
		Int64("i", 7),
		{Key: "u", Value: uint64(1 << 63)},
		{Key: "f", Value: 1.5},
		{Key: "any", Value: []int{1}},
	})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String("s", "v"),
		attribute.Bool("b", true),
		attribute.Int64("i", 7),
		attribute.String("u", "9223372036854775808"),
		attribute.Float64("f", 1.5),
		attribute.String("any", "[1]"),
	}, attrs)
	assert.Nil(t, toOTel(nil))
}
