package ximport

import (
	"log/slog"

	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"
	"github.com/omeyang/ontoimport/pkg/resilience/xbreaker"
	"github.com/omeyang/ontoimport/pkg/resilience/xretry"
	"github.com/omeyang/ontoimport/pkg/semantics/xrdf"
	"github.com/omeyang/ontoimport/pkg/storage/xtx"
)

const (
	// DefaultBatchSize 每个事务写入的默认语句数。
	DefaultBatchSize = 500

	// DefaultConcurrency 默认同时进行的批次事务数。
	DefaultConcurrency = 1

	// maxBatchSize 单批语句数上限。
	maxBatchSize = 100000
)

// Option 配置 Importer。
type Option func(*options)

type options struct {
	batchSize   int
	concurrency int
	format      xrdf.Format
	logger      *slog.Logger
	observer    xmetrics.Observer
	mapper      *xrdf.Mapper
	executor    *xtx.Executor
	retryer     *xretry.Retryer
	breaker     *xbreaker.Breaker
	sink        ReportSink
}

// WithBatchSize 设置单批语句数，超出范围的值被忽略。
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 && n <= maxBatchSize {
			o.batchSize = n
		}
	}
}

// WithConcurrency 设置同时进行的批次事务数。
// 大于 1 时批次可能乱序提交，重叠的顶点由事务冲突重试保证一致。
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithFormat 指定文档格式，不再按文件名识别。
func WithFormat(f xrdf.Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithLogger 设置日志记录器。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置可观测性观察者。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithMapper 设置语句映射器。
func WithMapper(m *xrdf.Mapper) Option {
	return func(o *options) {
		if m != nil {
			o.mapper = m
		}
	}
}

// WithExecutor 设置事务执行器，默认 xtx.Default()。
func WithExecutor(e *xtx.Executor) Option {
	return func(o *options) {
		if e != nil {
			o.executor = e
		}
	}
}

// WithRetryer 设置批次事务的重试策略。
func WithRetryer(r *xretry.Retryer) Option {
	return func(o *options) {
		if r != nil {
			o.retryer = r
		}
	}
}

// WithBreaker 设置存储熔断器。
func WithBreaker(b *xbreaker.Breaker) Option {
	return func(o *options) {
		if b != nil {
			o.breaker = b
		}
	}
}

// WithReportSink 设置导入记录的持久化目标。
func WithReportSink(s ReportSink) Option {
	return func(o *options) {
		o.sink = s
	}
}
