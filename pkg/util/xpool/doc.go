// Package xpool 提供带背压的弹性 worker pool。
//
// Pool 在有界的 worker 集合上执行任务，保证任务永不被直接拒绝：
// 饱和时由提交方（调用方 goroutine）承担等待，而不是丢弃任务或无限扩容。
//
// # 容量模型
//
// 提交顺序：
//   - worker 数 < MinWorkers 或当前没有 worker：直接创建新 worker 执行该任务
//   - 否则尝试入队（队列容量 QueueCapacity）
//   - 队列已满且 worker 数 < MaxWorkers：创建新 worker 执行该任务
//   - 队列已满且已达 MaxWorkers：进入背压
//
// 超过 MinWorkers 的 worker 空闲 IdleTimeout 后自动退出。
//
// # 背压
//
// 背压时调用方先停顿 BackpressureInterval（默认 100ns），然后重新尝试提交，
// 直到被接受；被接受后调用方继续阻塞到该任务执行完成，
// 因此持续过载时调用方被限速到 pool 的完成速率。
//
// 重试循环基于 [avast/retry-go/v5]，是显式循环而非递归，
// 上限由 MaxBackpressureRetries（0 表示不限）和调用方 context 共同决定。
// 超出上限返回 *SubmissionError（errors.Is(err, ErrSaturated)）。
//
// 背压等待期间 pool 被关闭时返回 *SubmissionError（errors.Is(err, ErrPoolShutdown)），
// 不会静默丢弃任务。
//
// # 生命周期
//
//   - New 创建后即可使用，worker 按需创建
//   - Shutdown 幂等、非阻塞：停止接受新任务，已入队和执行中的任务正常完成
//   - AwaitTermination / Done 等待所有 worker 退出
//   - Close 等价于 Shutdown + 等待
//
// # 任务失败
//
// 任务 panic 不会终止 worker。通过 Submit 提交的任务，panic 被转换为
// *PanicError 并经由 Future 返回给调用方；通过 Execute 提交的任务没有结果通道，
// panic 记录日志（默认仅记录类型，WithLogTaskValue 启用完整值）。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xpool
