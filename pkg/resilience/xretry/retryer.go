package xretry

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v5"
)

const (
	// DefaultAttempts 默认总尝试次数（含首次）。
	DefaultAttempts = 3

	// DefaultDelay 默认首次重试延迟。
	DefaultDelay = 100 * time.Millisecond

	// DefaultMaxDelay 默认单次重试延迟上限。
	DefaultMaxDelay = 2 * time.Second
)

// Retryer 重试执行器，创建后只读，可并发使用。
type Retryer struct {
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
	retryIf  func(error) bool
	onRetry  func(attempt int, err error)
}

// RetryerOption 执行器配置选项。
type RetryerOption func(*Retryer)

// WithAttempts 设置总尝试次数（含首次），小于 1 被忽略。
func WithAttempts(n int) RetryerOption {
	return func(r *Retryer) {
		if n >= 1 {
			r.attempts = uint(n)
		}
	}
}

// WithBackoff 设置指数退避的首次延迟和延迟上限。
func WithBackoff(delay, maxDelay time.Duration) RetryerOption {
	return func(r *Retryer) {
		if delay >= 0 {
			r.delay = delay
		}
		if maxDelay > 0 {
			r.maxDelay = maxDelay
		}
	}
}

// WithRetryIf 设置可重试判定，默认除 context 错误外都重试。
func WithRetryIf(fn func(error) bool) RetryerOption {
	return func(r *Retryer) {
		if fn != nil {
			r.retryIf = fn
		}
	}
}

// WithOnRetry 设置重试回调，attempt 从 1 开始。
func WithOnRetry(fn func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if fn != nil {
			r.onRetry = fn
		}
	}
}

// NewRetryer 创建重试执行器。默认 3 次尝试，100ms 起的指数退避，上限 2s。
func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
		maxDelay: DefaultMaxDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Attempts 返回总尝试次数。
func (r *Retryer) Attempts() int {
	return int(r.attempts)
}

// Do 执行带重试的操作。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if fn == nil {
		return ErrNilFunc
	}
	_, err := DoWithResult(ctx, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoWithResult 执行带重试的操作并返回结果。
// 重试耗尽时返回最后一次的错误。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	switch {
	case r == nil:
		return zero, ErrNilRetryer
	case ctx == nil:
		return zero, ErrNilContext
	case fn == nil:
		return zero, ErrNilFunc
	}

	return retry.NewWithData[T](r.options(ctx)...).Do(func() (T, error) {
		return fn(ctx)
	})
}

func (r *Retryer) options(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.MaxDelay(r.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(r.shouldRetry),
		retry.OnRetry(func(n uint, err error) {
			if r.onRetry != nil {
				r.onRetry(int(n)+1, err)
			}
		}),
	}
}

func (r *Retryer) shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if retryable, ok := retryableVerdict(err); ok {
		return retryable
	}
	if r.retryIf != nil {
		return r.retryIf(err)
	}
	return true
}
