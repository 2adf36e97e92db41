package xmetrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultInstrumentationName = "github.com/omeyang/ontoimport"

	metricOperationTotal    = "ontoimport.operation.total"
	metricOperationDuration = "ontoimport.operation.duration"
)

type otelConfig struct {
	name           string
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option 配置 OTel Observer。
type Option func(*otelConfig)

// WithInstrumentationName 设置 instrumentation 名称，空字符串被忽略。
func WithInstrumentationName(name string) Option {
	return func(c *otelConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithTracerProvider 设置 TracerProvider，默认使用全局 provider。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *otelConfig) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认使用全局 provider。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *otelConfig) {
		if mp != nil {
			c.meterProvider = mp
		}
	}
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := otelConfig{
		name:           defaultInstrumentationName,
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.name)
	total, err := meter.Int64Counter(metricOperationTotal,
		metric.WithDescription("Number of operations."),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, metricOperationTotal, err)
	}
	duration, err := meter.Float64Histogram(metricOperationDuration,
		metric.WithDescription("Duration of operations."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, metricOperationDuration, err)
	}

	return &otelObserver{
		tracer:   cfg.tracerProvider.Tracer(cfg.name),
		total:    total,
		duration: duration,
	}, nil
}

type otelObserver struct {
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func (o *otelObserver) Start(ctx context.Context, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	component := orUnknown(opts.Component)
	operation := orUnknown(opts.Operation)

	attrs := append([]attribute.KeyValue{
		attribute.String("component", component),
		attribute.String("operation", operation),
	}, toOTel(opts.Attrs)...)

	ctx, span := o.tracer.Start(ctx, component+"."+operation,
		trace.WithSpanKind(spanKind(opts.Kind)),
		trace.WithAttributes(attrs...))

	return ctx, &otelSpan{
		observer:  o,
		span:      span,
		ctx:       ctx,
		component: component,
		operation: operation,
		start:     time.Now(),
	}
}

type otelSpan struct {
	observer  *otelObserver
	span      trace.Span
	ctx       context.Context
	component string
	operation string
	start     time.Time
	once      sync.Once
}

// End 结束 span 并记录指标，重复调用只生效一次。
func (s *otelSpan) End(result Result) {
	s.once.Do(func() {
		status := result.status()
		if result.Err != nil {
			s.span.RecordError(result.Err)
		}
		if status == StatusError {
			msg := "operation failed"
			if result.Err != nil {
				msg = result.Err.Error()
			}
			s.span.SetStatus(codes.Error, msg)
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
		if attrs := toOTel(result.Attrs); len(attrs) > 0 {
			s.span.SetAttributes(attrs...)
		}
		s.span.End()

		// 指标使用不可取消的 ctx，超时或取消的操作同样计入
		ctx := context.WithoutCancel(s.ctx)
		set := metric.WithAttributes(
			attribute.String("component", s.component),
			attribute.String("operation", s.operation),
			attribute.String("status", string(status)),
		)
		s.observer.total.Add(ctx, 1, set)
		s.observer.duration.Record(ctx, time.Since(s.start).Seconds(), set)
	})
}

func spanKind(k Kind) trace.SpanKind {
	switch k {
	case KindClient:
		return trace.SpanKindClient
	case KindConsumer:
		return trace.SpanKindConsumer
	default:
		return trace.SpanKindInternal
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
