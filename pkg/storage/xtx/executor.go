package xtx

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/omeyang/ontoimport/pkg/util/xpool"
)

// Executor 在共享 pool 上执行事务任务，并在 pool 被关闭后自动替换。
type Executor struct {
	opts  options
	pool  atomic.Pointer[xpool.Pool]
	heals atomic.Int64
}

// New 创建 Executor。pool 在首次使用时创建。
func New(opts ...Option) (*Executor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	cfg := o.poolConfig
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("xtx: pool config: %w", err)
	}
	o.poolConfig = cfg

	return &Executor{opts: o}, nil
}

var defaultExecutor = sync.OnceValue(func() *Executor {
	e, err := New(WithPoolOptions(xpool.WithName("xtx")))
	if err != nil {
		// 默认配置总是有效
		panic(err)
	}
	return e
})

// Default 返回进程级共享的 Executor，使用默认 pool 配置。
func Default() *Executor {
	return defaultExecutor()
}

// Pool 返回当前可用的 pool，必要时创建或替换。
func (e *Executor) Pool() (*xpool.Pool, error) {
	if e == nil {
		return nil, ErrNilExecutor
	}
	return e.acquire()
}

// acquire 返回未关闭的 pool。
//
// 观察到 pool 已关闭时创建新 pool 并 CAS 替换；竞争失败的一方
// 关闭自己创建的 pool 并使用胜出者的 pool。
func (e *Executor) acquire() (*xpool.Pool, error) {
	for {
		cur := e.pool.Load()
		if cur != nil && !cur.IsShutdown() {
			return cur, nil
		}

		next, err := xpool.New(e.opts.poolConfig, e.opts.poolOptions...)
		if err != nil {
			return nil, err
		}
		if !e.pool.CompareAndSwap(cur, next) {
			next.Shutdown()
			continue
		}

		if cur == nil {
			e.opts.logger.Debug("xtx: pool created",
				slog.Int("min_workers", e.opts.poolConfig.MinWorkers),
				slog.Int("max_workers", e.opts.poolConfig.MaxWorkers),
				slog.Int("queue_capacity", e.opts.poolConfig.QueueCapacity))
		} else {
			n := e.heals.Add(1)
			e.opts.logger.Warn("xtx: pool was shut down, substituted a fresh pool", slog.Int64("heals", n))
		}
		return next, nil
	}
}

// Heals 返回自愈替换 pool 的次数。
func (e *Executor) Heals() int64 {
	return e.heals.Load()
}

// Shutdown 关闭当前 pool，不等待任务完成。
// 之后的 Run/RunAsync 会触发自愈创建新 pool。
func (e *Executor) Shutdown() {
	if p := e.pool.Load(); p != nil {
		p.Shutdown()
	}
}

// IsShutdown 报告当前 pool 是否已关闭。尚未创建 pool 时返回 false。
func (e *Executor) IsShutdown() bool {
	p := e.pool.Load()
	return p != nil && p.IsShutdown()
}

// Close 关闭当前 pool 并等待其任务完成。
func (e *Executor) Close() error {
	if p := e.pool.Load(); p != nil {
		return p.Close()
	}
	return nil
}

// Stats 返回当前 pool 的运行状态，尚未创建 pool 时返回零值。
func (e *Executor) Stats() xpool.Stats {
	if p := e.pool.Load(); p != nil {
		return p.Stats()
	}
	return xpool.Stats{}
}
