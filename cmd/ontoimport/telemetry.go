package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"
)

// telemetry 持有进程内的 OTel provider。
// 没有配置导出器，退出时将指标快照写入日志。
type telemetry struct {
	logger   *slog.Logger
	reader   *sdkmetric.ManualReader
	meters   *sdkmetric.MeterProvider
	tracers  *sdktrace.TracerProvider
	observer xmetrics.Observer
}

func newTelemetry(logger *slog.Logger) (*telemetry, error) {
	reader := sdkmetric.NewManualReader()
	t := &telemetry{
		logger:  logger,
		reader:  reader,
		meters:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		tracers: sdktrace.NewTracerProvider(),
	}
	observer, err := xmetrics.NewOTelObserver(
		xmetrics.WithInstrumentationName("github.com/omeyang/ontoimport"),
		xmetrics.WithMeterProvider(t.meters),
		xmetrics.WithTracerProvider(t.tracers),
	)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	t.observer = observer
	return t, nil
}

// Shutdown 记录指标快照并关闭 provider。
func (t *telemetry) Shutdown(ctx context.Context) error {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err == nil {
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				t.logger.Info("metric", slog.String("name", m.Name), slog.Any("value", summarize(m.Data)))
			}
		}
	}
	return errors.Join(t.meters.Shutdown(ctx), t.tracers.Shutdown(ctx))
}

// summarize 将指标数据汇总为单个数值。
func summarize(data metricdata.Aggregation) any {
	switch d := data.(type) {
	case metricdata.Sum[int64]:
		var total int64
		for _, p := range d.DataPoints {
			total += p.Value
		}
		return total
	case metricdata.Gauge[int64]:
		var total int64
		for _, p := range d.DataPoints {
			total += p.Value
		}
		return total
	case metricdata.Histogram[float64]:
		var count uint64
		var sum float64
		for _, p := range d.DataPoints {
			count += p.Count
			sum += p.Sum
		}
		return map[string]any{"count": count, "sum": sum}
	default:
		return fmt.Sprintf("%T", data)
	}
}
