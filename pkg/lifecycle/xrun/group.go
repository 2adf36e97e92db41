package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Group 并发运行多个任务并协调关闭。Go/GoWithName/Cancel 并发安全，Wait 只应调用一次。
type Group struct {
	eg     *errgroup.Group
	ctx    context.Context
	parent context.Context
	cancel context.CancelCauseFunc
	opts   options
}

// NewGroup 创建 Group，返回任务使用的 ctx。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	parent, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(parent)
	return &Group{eg: eg, ctx: egCtx, parent: parent, cancel: cancel, opts: o}, egCtx
}

// Go 启动任务。任务返回非 nil 错误时取消其余任务。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，并记录任务的启动和退出。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.Go(func(ctx context.Context) error {
		if fn == nil {
			return ErrNilFunc
		}
		log := g.opts.logger.With(slog.String("group", g.opts.name), slog.String("task", name))
		log.Debug("task starting")
		err := fn(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("task exited with error", slog.Any("error", err))
		} else {
			log.Debug("task stopped")
		}
		return err
	})
}

// Cancel 取消所有任务，cause 非 nil 时作为 Wait 的返回值。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Wait 等待所有任务结束。
//
// 由 Cancel 或父 ctx 引起的 context.Canceled 被视为正常退出：
// 有显式 cause 时返回 cause，否则返回 nil。其余错误原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)
	err := g.eg.Wait()

	if g.parent.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		if cause := context.Cause(g.parent); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	return err
}

// Run 运行任务直到全部结束、任一失败或收到信号。
// 收到信号时返回 *SignalError；任务全部正常结束时返回 nil。
func Run(ctx context.Context, opts []Option, tasks ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)

	var pending sync.WaitGroup
	pending.Add(len(tasks))
	for _, task := range tasks {
		g.Go(func(ctx context.Context) error {
			defer pending.Done()
			if task == nil {
				return ErrNilFunc
			}
			return task(ctx)
		})
	}

	if len(g.opts.signals) > 0 || g.opts.sigCh != nil {
		g.Go(func(ctx context.Context) error {
			return g.awaitSignal(ctx)
		})
		// 任务全部结束后停止信号监听。
		g.Go(func(context.Context) error {
			pending.Wait()
			g.Cancel(nil)
			return nil
		})
	}
	return g.Wait()
}

func (g *Group) awaitSignal(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	if len(g.opts.signals) > 0 {
		signal.Notify(sigCh, g.opts.signals...)
		defer signal.Stop(sigCh)
	}

	var sig os.Signal
	select {
	case sig = <-sigCh:
	case sig = <-g.opts.sigCh:
	case <-ctx.Done():
		return nil
	}
	g.opts.logger.Info("received signal", slog.String("group", g.opts.name), slog.String("signal", sig.String()))
	g.Cancel(&SignalError{Signal: sig})
	return nil
}
