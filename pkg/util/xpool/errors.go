package xpool

import (
	"errors"
	"fmt"
)

var (
	// ErrNilTask 表示 task 参数为 nil。
	ErrNilTask = errors.New("xpool: task cannot be nil")

	// ErrNilPool 表示 pool 参数为 nil。
	ErrNilPool = errors.New("xpool: nil pool")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xpool: nil context")

	// ErrPoolShutdown 表示 pool 已关闭，无法提交任务。
	ErrPoolShutdown = errors.New("xpool: pool is shut down")

	// ErrSaturated 表示背压重试次数耗尽或等待被取消时 pool 仍然饱和。
	ErrSaturated = errors.New("xpool: pool saturated")

	// ErrInvalidWorkers 表示 worker 数量配置无效。
	ErrInvalidWorkers = errors.New("xpool: invalid worker count")

	// ErrInvalidQueueCapacity 表示队列容量配置无效。
	ErrInvalidQueueCapacity = errors.New("xpool: invalid queue capacity")

	// ErrInvalidIdleTimeout 表示空闲超时配置无效。
	ErrInvalidIdleTimeout = errors.New("xpool: invalid idle timeout")

	// ErrInvalidBackpressure 表示背压参数配置无效。
	ErrInvalidBackpressure = errors.New("xpool: invalid backpressure setting")
)

// SubmissionError 表示任务无法被 pool 接受。
//
// 使用 errors.Is 判断具体原因：
//   - ErrPoolShutdown：pool 已关闭（包括背压等待期间被关闭）
//   - ErrSaturated：背压重试耗尽，或调用方 context 在等待期间结束
//
// context 结束时 Err 同时包含 context 错误，可用 errors.Is(err, context.DeadlineExceeded) 判断。
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return "xpool: submission failed"
	}
	return "xpool: submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// PanicError 表示任务执行时发生 panic。
// 通过 Submit 提交的任务 panic 时，Future 返回此错误。
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("xpool: task panicked: %v", e.Value)
}
