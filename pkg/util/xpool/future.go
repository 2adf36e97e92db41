package xpool

import (
	"context"
	"runtime/debug"
)

// Future 表示通过 Submit 提交的任务的结果。
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.value = v
	f.err = err
	close(f.done)
}

// Done 返回任务结束（成功、失败或 panic）后关闭的 channel。
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get 等待任务结束并返回结果。
// ctx 结束时返回 ctx.Err()，任务本身不受影响，可再次调用 Get。
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	if ctx == nil {
		var zero T
		return zero, ErrNilContext
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Submit 提交有返回值的任务，返回对应的 Future。
//
// 提交语义与 Pool.Execute 一致：饱和时调用方进入背压，
// 此时返回的 Future 通常已经完成。
// 任务 panic 时 Future 返回 *PanicError，不记录日志。
func Submit[T any](ctx context.Context, p *Pool, task func() (T, error)) (*Future[T], error) {
	if p == nil {
		return nil, ErrNilPool
	}
	if task == nil {
		return nil, ErrNilTask
	}

	f := newFuture[T]()
	err := p.Execute(ctx, func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				p.panics.Add(1)
				var zero T
				f.complete(zero, &PanicError{Value: r, Stack: debug.Stack()})
				return
			}
			f.complete(v, err)
		}()
		v, err = task()
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}
