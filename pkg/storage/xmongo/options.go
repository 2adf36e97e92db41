package xmongo

import (
	"time"

	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"

	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	// DefaultHealthTimeout 健康检查默认超时时间。
	DefaultHealthTimeout = 5 * time.Second

	// DefaultWriteTimeout 写入操作默认兜底超时时间。
	// 当调用方 context 没有 deadline 时，BulkInsert/BulkUpsert 使用此超时防止无限阻塞。
	DefaultWriteTimeout = 60 * time.Second
)

// Options 定义 MongoDB 包装器的配置选项。
type Options struct {
	// HealthTimeout 健康检查超时时间。
	HealthTimeout time.Duration

	// WriteTimeout 写入操作兜底超时时间，仅在调用方 context 没有 deadline 时生效。
	// 为 0 时完全依赖调用方 context。
	WriteTimeout time.Duration

	// Observer 是统一观测接口（metrics/tracing）。
	Observer xmetrics.Observer
}

// Option 定义配置 MongoDB 包装器的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		HealthTimeout: DefaultHealthTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		Observer:      xmetrics.NoopObserver{},
	}
}

// WithHealthTimeout 设置健康检查超时时间。非正值被忽略。
func WithHealthTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.HealthTimeout = timeout
		}
	}
}

// WithWriteTimeout 设置写入操作兜底超时时间。
// 传入 0 可显式禁用兜底超时，负值被忽略。
func WithWriteTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout >= 0 {
			o.WriteTimeout = timeout
		}
	}
}

// WithObserver 设置统一观测接口。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *Options) {
		if observer != nil {
			o.Observer = observer
		}
	}
}

// ResourceOption 配置 Resource 打开的会话和事务。
type ResourceOption func(*resourceOptions)

type resourceOptions struct {
	session     []options.Lister[options.SessionOptions]
	transaction []options.Lister[options.TransactionOptions]
}

// WithSessionOptions 设置 StartSession 的选项。
func WithSessionOptions(opts ...options.Lister[options.SessionOptions]) ResourceOption {
	return func(o *resourceOptions) {
		o.session = append(o.session, opts...)
	}
}

// WithTransactionOptions 设置 StartTransaction 的选项，如读写关注级别。
func WithTransactionOptions(opts ...options.Lister[options.TransactionOptions]) ResourceOption {
	return func(o *resourceOptions) {
		o.transaction = append(o.transaction, opts...)
	}
}
