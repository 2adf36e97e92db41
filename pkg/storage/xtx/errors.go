package xtx

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xtx: nil context")

	// ErrNilTask 表示 task 参数为 nil。
	ErrNilTask = errors.New("xtx: nil task")

	// ErrNilResource 表示 resource 参数为 nil。
	ErrNilResource = errors.New("xtx: nil resource")

	// ErrNilExecutor 表示 executor 参数为 nil。
	ErrNilExecutor = errors.New("xtx: nil executor")
)

// 错误类别，作为 Error.Kind 使用，可直接用于 errors.Is。
var (
	// ErrSubmission 表示 pool 无法接受任务。
	ErrSubmission = errors.New("xtx: submission failed")

	// ErrScope 表示事务作用域操作失败。
	ErrScope = errors.New("xtx: transaction scope failed")

	// ErrTaskFailed 表示任务执行失败。
	ErrTaskFailed = errors.New("xtx: task execution failed")
)

// Error 是带类别的执行错误。
//
// errors.Is(err, ErrTaskFailed) 按类别匹配；errors.Unwrap 返回原始错误。
type Error struct {
	// Kind 错误类别：ErrSubmission、ErrScope 或 ErrTaskFailed。
	Kind error
	// Op 失败的操作，如 "open"、"commit"、"close"、"run"。
	Op string
	// Err 原始错误。
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v [%s]", e.Kind, e.Op)
	}
	return fmt.Sprintf("%v [%s]: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按类别匹配。
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind
}

// recognized 判断错误是否可原样返回给 Run 的调用方。
func recognized(err error, extra []error) bool {
	var xe *Error
	if errors.As(err, &xe) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	for _, target := range extra {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// classify 将任务错误转换为 Run 返回的错误。
func classify(err error, extra []error) error {
	if err == nil || recognized(err, extra) {
		return err
	}
	return &Error{Kind: ErrTaskFailed, Op: "run", Err: err}
}
