package xmetrics

import "context"

// Kind 是 span 的类型，映射到 OTel SpanKind。
type Kind int

const (
	// KindInternal 进程内操作，默认值。
	KindInternal Kind = iota
	// KindClient 对外部存储的调用。
	KindClient
	// KindConsumer 消费输入（文件、目录事件）。
	KindConsumer
)

// String 返回 Kind 名称。
func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindConsumer:
		return "consumer"
	default:
		return "internal"
	}
}

// Status 是操作结果状态。
type Status string

const (
	// StatusOK 成功。
	StatusOK Status = "ok"
	// StatusError 失败。
	StatusError Status = "error"
)

// Attr 是附加在 span 上的键值属性。
type Attr struct {
	Key   string
	Value any
}

// SpanOptions 描述要观测的操作。
type SpanOptions struct {
	Component string
	Operation string
	Kind      Kind
	Attrs     []Attr
}

// Result 是操作结束时的结果。Status 为空时由 Err 推导。
type Result struct {
	Status Status
	Err    error
	Attrs  []Attr
}

// status 返回结果的最终状态。
func (r Result) status() Status {
	if r.Status != "" {
		return r.Status
	}
	if r.Err != nil {
		return StatusError
	}
	return StatusOK
}

// Span 是一次正在进行的观测。
type Span interface {
	End(result Result)
}

// Observer 创建 Span。实现必须并发安全。
type Observer interface {
	Start(ctx context.Context, opts SpanOptions) (context.Context, Span)
}

// NoopObserver 不做任何记录。
type NoopObserver struct{}

// Start 原样返回 ctx。
func (NoopObserver) Start(ctx context.Context, _ SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 不做任何记录。
type NoopSpan struct{}

// End 空实现。
func (NoopSpan) End(Result) {}

// Start 通过 observer 开始观测。
// observer 为 nil 或返回 nil 值时回退到空实现，返回值总是非 nil。
func Start(ctx context.Context, observer Observer, opts SpanOptions) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	next, span := observer.Start(ctx, opts)
	if next == nil {
		next = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return next, span
}
