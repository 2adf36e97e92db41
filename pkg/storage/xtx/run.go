package xtx

import (
	"context"
	"errors"

	"github.com/omeyang/ontoimport/pkg/observability/xmetrics"
	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// RunAsync 在 pool 上以 res 的事务作用域执行 task，返回任务的 Future。
//
// Future 中的错误是任务或作用域的原始错误，未经 Run 的分类；
// 任务 panic 时为 *xpool.PanicError。提交失败时返回 Kind 为 ErrSubmission 的 *Error。
func RunAsync[T any](ctx context.Context, e *Executor, res Resource, task Task[T]) (*xpool.Future[T], error) {
	f, _, err := submit(ctx, e, res, task)
	return f, err
}

// Run 执行 task 并阻塞到结果可用。
//
// 已识别的错误原样返回，其余错误包装为 Kind 为 ErrTaskFailed 的 *Error。
func Run[T any](ctx context.Context, e *Executor, res Resource, task Task[T]) (T, error) {
	var zero T
	f, waitCtx, err := submit(ctx, e, res, task)
	if err != nil {
		return zero, err
	}

	v, err := f.Get(waitCtx)
	if err != nil {
		return zero, classify(err, e.opts.recognized)
	}
	return v, nil
}

// submit 校验参数、准备截止时间并提交任务，返回调用方等待结果使用的 ctx。
func submit[T any](ctx context.Context, e *Executor, res Resource, task Task[T]) (*xpool.Future[T], context.Context, error) {
	switch {
	case ctx == nil:
		return nil, nil, ErrNilContext
	case e == nil:
		return nil, nil, ErrNilExecutor
	case res == nil:
		return nil, nil, ErrNilResource
	case task == nil:
		return nil, nil, ErrNilTask
	}
	e.notify(StateCreated)

	pool, err := e.acquire()
	if err != nil {
		return nil, nil, &Error{Kind: ErrSubmission, Op: "acquire", Err: err}
	}

	taskCtx, cancel := ctx, context.CancelFunc(func() {})
	if e.opts.timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, e.opts.timeout)
	}

	f, err := xpool.Submit(taskCtx, pool, func() (T, error) {
		defer cancel()
		return execInScope(taskCtx, e, res, task)
	})
	if err != nil {
		cancel()
		return nil, nil, &Error{Kind: ErrSubmission, Op: "submit", Err: err}
	}
	return f, taskCtx, nil
}

// execInScope 在 worker 上打开作用域并执行任务。
//
// 顺序：Open → task → Commit → Release → Close。
// task 失败时跳过 Commit 和 Release；Close 总是执行且只执行一次，
// 使用脱离取消的 ctx，保证超时或取消后仍能回滚。
func execInScope[T any](ctx context.Context, e *Executor, res Resource, task Task[T]) (v T, err error) {
	// worker 取出任务时才进入 Submitted；背压只会推迟，不会跳过
	e.notify(StateSubmitted)

	ctx, span := xmetrics.Start(ctx, e.opts.observer, xmetrics.SpanOptions{
		Component: "xtx",
		Operation: "transaction",
		Kind:      xmetrics.KindInternal,
	})
	state := StateRolledBack
	defer func() {
		e.notify(state)
		span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{xmetrics.String("state", string(state))}})
	}()

	scope, err := res.OpenScope(ctx)
	if err != nil {
		var zero T
		return zero, &Error{Kind: ErrScope, Op: "open", Err: err}
	}
	defer func() {
		if cerr := scope.Close(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, &Error{Kind: ErrScope, Op: "close", Err: cerr})
		}
	}()

	taskCtx := ctx
	if b, ok := scope.(ContextBinder); ok {
		taskCtx = b.Bind(ctx)
	}

	e.notify(StateRunning)
	v, err = task(taskCtx)
	if err != nil {
		return v, err
	}

	if err = scope.Commit(ctx); err != nil {
		var zero T
		return zero, &Error{Kind: ErrScope, Op: "commit", Err: err}
	}
	state = StateCommitted

	if r, ok := res.(Releaser); ok {
		if err = r.Release(context.WithoutCancel(ctx)); err != nil {
			return v, &Error{Kind: ErrScope, Op: "release", Err: err}
		}
	}
	return v, nil
}

func (e *Executor) notify(s State) {
	if e.opts.onState != nil {
		e.opts.onState(s)
	}
}
