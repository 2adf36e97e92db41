package xpool

// Stats 是 pool 运行状态的快照。
type Stats struct {
	// Workers 当前存活的 worker 数。
	Workers int
	// PeakWorkers 历史最大 worker 数。
	PeakWorkers int
	// Active 正在执行任务的 worker 数。
	Active int
	// Queued 队列中等待执行的任务数。
	Queued int
	// Submitted 已被接受的任务总数。
	Submitted int64
	// Completed 已执行结束的任务总数（含 panic）。
	Completed int64
	// Panics 发生 panic 的任务数。
	Panics int64
	// Backpressured 进入背压的提交次数。
	Backpressured int64
	// BackpressureRetries 背压重试总次数。
	BackpressureRetries int64
	// Shutdown pool 是否已关闭。
	Shutdown bool
}

// Stats 返回当前运行状态。各字段分别读取，彼此之间不保证一致。
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	return Stats{
		Workers:             workers,
		PeakWorkers:         int(p.peakWorkers.Load()),
		Active:              int(p.active.Load()),
		Queued:              len(p.queue),
		Submitted:           p.submitted.Load(),
		Completed:           p.completed.Load(),
		Panics:              p.panics.Load(),
		Backpressured:       p.backpressured.Load(),
		BackpressureRetries: p.backpressureRetries.Load(),
		Shutdown:            p.shutdown.Load(),
	}
}
