package xbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

type (
	// Counts 统计计数。
	Counts = gobreaker.Counts

	// State 熔断器状态。
	State = gobreaker.State
)

// 熔断器状态。
const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

const (
	// DefaultFailureThreshold 默认连续失败熔断阈值。
	DefaultFailureThreshold = 5

	// DefaultTimeout 默认从打开到半开的等待时间。
	DefaultTimeout = 30 * time.Second
)

// Breaker 熔断器。
type Breaker struct {
	name          string
	threshold     uint32
	timeout       time.Duration
	maxRequests   uint32
	onStateChange func(name string, from, to State)

	cb *gobreaker.CircuitBreaker[any]
}

// BreakerOption 熔断器配置选项。
type BreakerOption func(*Breaker)

// WithFailureThreshold 设置触发熔断的连续失败次数，0 被忽略。
func WithFailureThreshold(n uint32) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithTimeout 设置从打开到半开的等待时间。
func WithTimeout(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithMaxRequests 设置半开状态下允许通过的最大请求数，默认 1。
func WithMaxRequests(n uint32) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.maxRequests = n
		}
	}
}

// WithOnStateChange 设置状态变化回调。
func WithOnStateChange(f func(name string, from, to State)) BreakerOption {
	return func(b *Breaker) {
		b.onStateChange = f
	}
}

// NewBreaker 创建熔断器。默认连续失败 5 次熔断，30 秒后半开。
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:        name,
		threshold:   DefaultFailureThreshold,
		timeout:     DefaultTimeout,
		maxRequests: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	st := gobreaker.Settings{
		Name:        b.name,
		MaxRequests: b.maxRequests,
		Timeout:     b.timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= b.threshold
		},
		IsExcluded: isExcluded,
	}
	if b.onStateChange != nil {
		st.OnStateChange = b.onStateChange
	}
	b.cb = gobreaker.NewCircuitBreaker[any](st)
	return b
}

// isExcluded 调用方取消不代表下游故障，不计入统计。
func isExcluded(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Execute 执行受熔断器保护的操作。ctx 已结束时不执行，直接返回 ctx 错误。
func Execute[T any](ctx context.Context, b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	if b == nil {
		return zero, ErrNilBreaker
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	result, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		if typed, ok := result.(T); ok {
			return typed, wrapBreakerError(err, b.name)
		}
		return zero, wrapBreakerError(err, b.name)
	}
	typed, _ := result.(T)
	return typed, nil
}

// Name 返回熔断器名称。
func (b *Breaker) Name() string {
	return b.name
}

// State 返回当前状态。
func (b *Breaker) State() State {
	return b.cb.State()
}

// Counts 返回当前统计计数。
func (b *Breaker) Counts() Counts {
	return b.cb.Counts()
}
