package xpool

import (
	"context"
	"errors"

	retry "github.com/avast/retry-go/v5"
)

// backpressure 在 pool 饱和时由调用方 goroutine 承担等待。
//
// 每次重试前停顿 BackpressureInterval，直到任务被接受、pool 关闭、
// 重试次数耗尽或 ctx 结束。任务被接受后继续等待其执行完成，
// 使持续过载时调用方的提交速率与 pool 的完成速率一致。
func (p *Pool) backpressure(ctx context.Context, task func()) error {
	p.backpressured.Add(1)

	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		task()
	}

	var retries int
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(uint(p.cfg.MaxBackpressureRetries)),
		retry.Delay(p.cfg.BackpressureInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrSaturated)
		}),
		retry.OnRetry(func(_ uint, _ error) {
			retries++
			p.backpressureRetries.Add(1)
		}),
	).Do(func() error {
		accepted, err := p.offer(wrapped)
		if err != nil {
			return err
		}
		if !accepted {
			return ErrSaturated
		}
		return nil
	})

	if p.opts.onSaturated != nil {
		p.opts.onSaturated(retries)
	}
	if err != nil {
		return submissionFailure(ctx, err)
	}

	// 已接受的任务不受 ctx 取消影响，ctx 结束只解除调用方的等待
	select {
	case <-finished:
	case <-ctx.Done():
	}
	return nil
}

// submissionFailure 将背压循环的退出原因归一为 *SubmissionError。
func submissionFailure(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrPoolShutdown):
		return &SubmissionError{Err: ErrPoolShutdown}
	case ctx.Err() != nil:
		return &SubmissionError{Err: errors.Join(ErrSaturated, context.Cause(ctx))}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &SubmissionError{Err: errors.Join(ErrSaturated, err)}
	default:
		return &SubmissionError{Err: ErrSaturated}
	}
}
