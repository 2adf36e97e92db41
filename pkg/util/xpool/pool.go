package xpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Pool 是带背压的弹性 worker pool。
//
// worker 数在 [MinWorkers, MaxWorkers] 之间按需伸缩，
// 待执行任务存放在容量为 QueueCapacity 的队列中。
// 所有方法并发安全。
type Pool struct {
	cfg  Config
	opts options

	queue chan func()

	// mu 保护 workers 计数、shutdown 转换和入队操作，
	// 保证关闭队列后不会再有发送。
	mu       sync.Mutex
	workers  int
	shutdown atomic.Bool

	wg   sync.WaitGroup
	done chan struct{}

	submitted           atomic.Int64
	completed           atomic.Int64
	active              atomic.Int64
	panics              atomic.Int64
	backpressured       atomic.Int64
	backpressureRetries atomic.Int64
	peakWorkers         atomic.Int64
}

// New 创建 pool。零值配置字段使用默认值，见 Config。
// worker 按需创建，New 本身不启动 goroutine。
func New(cfg Config, opts ...Option) (*Pool, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.name != "" {
		o.logger = o.logger.With(slog.String("pool", o.name))
	}

	return &Pool{
		cfg:   cfg,
		opts:  o,
		queue: make(chan func(), cfg.QueueCapacity),
		done:  make(chan struct{}),
	}, nil
}

// Config 返回规范化后的配置。
func (p *Pool) Config() Config {
	return p.cfg
}

// Execute 提交无返回值的任务。
//
// 队列有空间时立即返回；饱和时进入背压，调用方阻塞直到任务被接受并执行完成。
// 任务无法被接受时返回 *SubmissionError。
func (p *Pool) Execute(ctx context.Context, task func()) error {
	if p == nil {
		return ErrNilPool
	}
	if ctx == nil {
		return ErrNilContext
	}
	if task == nil {
		return ErrNilTask
	}

	accepted, err := p.offer(task)
	if err != nil {
		return &SubmissionError{Err: err}
	}
	if accepted {
		return nil
	}
	return p.backpressure(ctx, task)
}

// offer 按弹性线程池语义尝试接受任务，不阻塞。
// 返回 false 表示队列已满且已达 MaxWorkers。
func (p *Pool) offer(task func()) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown.Load() {
		return false, ErrPoolShutdown
	}

	// 没有 worker 时直接交给新 worker，任务不占用队列槽位，
	// 保证 QueueCapacity+MaxWorkers 以内的提交都不进入背压。
	if p.workers < p.cfg.MinWorkers || p.workers == 0 {
		p.spawnLocked(task)
		p.submitted.Add(1)
		return true, nil
	}

	select {
	case p.queue <- task:
		p.submitted.Add(1)
		return true, nil
	default:
	}

	if p.workers < p.cfg.MaxWorkers {
		p.spawnLocked(task)
		p.submitted.Add(1)
		return true, nil
	}
	return false, nil
}

// spawnLocked 创建 worker，调用方必须持有 mu。
func (p *Pool) spawnLocked(first func()) {
	p.workers++
	if n := int64(p.workers); n > p.peakWorkers.Load() {
		p.peakWorkers.Store(n)
	}
	p.wg.Add(1)
	go p.worker(first)
}

// worker 先执行 first（如有），再持续从队列读取任务。
// 队列关闭后处理完剩余任务再退出；超出 MinWorkers 的 worker 空闲超时后退出。
func (p *Pool) worker(first func()) {
	defer p.wg.Done()

	if first != nil {
		p.runTask(first)
	}

	idle := time.NewTimer(p.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				p.mu.Lock()
				p.workers--
				p.mu.Unlock()
				return
			}
			p.runTask(task)
			idle.Reset(p.cfg.IdleTimeout)
		case <-idle.C:
			if p.retire() {
				return
			}
			idle.Reset(p.cfg.IdleTimeout)
		}
	}
}

// retire 判断空闲 worker 能否退出。
// 队列非空时不退出，避免留下无人处理的任务。
func (p *Pool) retire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.workers > p.cfg.MinWorkers && len(p.queue) == 0 {
		p.workers--
		return true
	}
	return false
}

// runTask 执行任务并恢复 panic，保证 worker 可继续复用。
func (p *Pool) runTask(task func()) {
	p.active.Add(1)
	defer func() {
		p.active.Add(-1)
		p.completed.Add(1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.logPanic(r, debug.Stack())
		}
	}()
	task()
}

func (p *Pool) logPanic(r any, stack []byte) {
	attrs := []any{slog.String("panic_type", fmt.Sprintf("%T", r))}
	if p.opts.logTaskValue {
		attrs = append(attrs, slog.Any("panic", r), slog.String("stack", string(stack)))
	}
	p.opts.logger.Error("xpool: worker panic recovered", attrs...)
}

// IsShutdown 报告 pool 是否已关闭。
func (p *Pool) IsShutdown() bool {
	return p.shutdown.Load()
}

// Shutdown 停止接受新任务，已入队和执行中的任务正常完成。
// 幂等且不阻塞，使用 AwaitTermination 或 Done 等待 worker 全部退出。
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.shutdown.CompareAndSwap(false, true) {
		return
	}
	close(p.queue)
	go func() {
		p.wg.Wait()
		close(p.done)
	}()
}

// Done 返回 pool 关闭且所有 worker 退出后关闭的 channel。
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// AwaitTermination 等待所有 worker 退出或 ctx 结束。
// 未调用 Shutdown 时会一直等待到 ctx 结束。
func (p *Pool) AwaitTermination(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 关闭 pool 并等待所有任务完成。
func (p *Pool) Close() error {
	p.Shutdown()
	<-p.done
	return nil
}
