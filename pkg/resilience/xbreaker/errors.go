package xbreaker

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrNilBreaker 传入的 Breaker 为 nil。
	ErrNilBreaker = errors.New("xbreaker: breaker cannot be nil")

	// ErrNilFunc 传入的操作函数为 nil。
	ErrNilFunc = errors.New("xbreaker: function cannot be nil")

	// ErrOpenState 熔断器处于打开状态。
	ErrOpenState = gobreaker.ErrOpenState

	// ErrTooManyRequests 半开状态下请求过多。
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

// BreakerError 包装熔断器拒绝执行的错误。
type BreakerError struct {
	Err   error
	Name  string
	State State
}

func (e *BreakerError) Error() string {
	return fmt.Sprintf("breaker %s: %v", e.Name, e.Err)
}

func (e *BreakerError) Unwrap() error {
	return e.Err
}

// Retryable 熔断期间重试没有意义，返回 false。
func (e *BreakerError) Retryable() bool {
	return false
}

// wrapBreakerError 只包装 gobreaker 的哨兵错误，其余原样返回。
// 状态从错误推导，避免执行后再查询 State 带来的竞态。
func wrapBreakerError(err error, name string) error {
	switch err {
	case gobreaker.ErrOpenState:
		return &BreakerError{Err: err, Name: name, State: StateOpen}
	case gobreaker.ErrTooManyRequests:
		return &BreakerError{Err: err, Name: name, State: StateHalfOpen}
	default:
		return err
	}
}

// IsOpen 报告 err 是否因熔断器打开或半开限流而被拒绝。
func IsOpen(err error) bool {
	var be *BreakerError
	return errors.As(err, &be)
}
