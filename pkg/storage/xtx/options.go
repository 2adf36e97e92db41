package xtx

import (
	"log/slog"
	"time"

	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"
	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// Option 定义 Executor 可选配置函数类型。
type Option func(*options)

type options struct {
	poolConfig  xpool.Config
	poolOptions []xpool.Option
	timeout     time.Duration
	recognized  []error
	logger      *slog.Logger
	observer    xmetrics.Observer
	onState     func(State)
}

func defaultOptions() options {
	return options{
		poolConfig: xpool.DefaultConfig(),
		logger:     slog.Default(),
		observer:   xmetrics.NoopObserver{},
	}
}

// WithPoolConfig 设置 pool 容量配置，零值字段使用 xpool 的默认值。
// 自愈时新 pool 使用同一配置。
func WithPoolConfig(cfg xpool.Config) Option {
	return func(o *options) {
		o.poolConfig = cfg
	}
}

// WithPoolOptions 追加创建 pool 时使用的选项。
func WithPoolOptions(opts ...xpool.Option) Option {
	return func(o *options) {
		o.poolOptions = append(o.poolOptions, opts...)
	}
}

// WithTimeout 为每次 Run/RunAsync 附加截止时间，0 表示不限。
// 任务通过 ctx 感知截止时间；Run 在截止时返回 context.DeadlineExceeded。
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRecognized 注册可由 Run 原样返回的 sentinel 错误。
func WithRecognized(errs ...error) Option {
	return func(o *options) {
		for _, err := range errs {
			if err != nil {
				o.recognized = append(o.recognized, err)
			}
		}
	}
}

// WithLogger 设置自定义日志记录器。
// 默认使用 slog.Default()。传入 nil 将被忽略。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver 设置观测接口，用于记录每次事务执行的 span 和指标。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithStateHook 设置状态迁移回调。
// Created 在调用方 goroutine 上触发，其余在 worker 上按迁移顺序触发。
// 回调可能被并发调用。
func WithStateHook(fn func(State)) Option {
	return func(o *options) {
		o.onState = fn
	}
}
