// Package xtx 在共享的背压 worker pool 上以事务作用域执行任务。
//
// 每个任务在 worker 上独占一个 Scope：
//   - 任务成功：先 Commit，再调用 Releaser（资源实现时），最后 Close
//   - 任务失败或 panic：不 Commit，直接 Close，由底层资源视为回滚
//   - 无论哪条路径，Scope 都恰好 Close 一次
//
// 状态迁移：Created → Submitted → Running → Committed | RolledBack，
// 不会回到先前状态。Submitted 可能因背压被推迟，但不会被跳过。
//
// # 共享 pool 与自愈
//
// Executor 以 atomic.Pointer 持有 pool 引用。每次 Run/RunAsync 前检查当前 pool，
// 若已关闭则创建新 pool 并通过 CompareAndSwap 替换；并发替换时只有一个成功，
// 失败方关闭自己创建的 pool。已在旧 pool 上运行的任务不受影响。
//
// # 错误
//
// Run 的错误分为三类（*Error 的 Kind）：
//   - ErrSubmission：pool 无法接受任务
//   - ErrScope：打开、提交、释放或关闭 Scope 失败
//   - ErrTaskFailed：任务本身失败且不属于已识别类型，原始错误作为 cause
//
// 已识别的错误（*Error、context 错误、WithRecognized 注册的 sentinel）原样返回。
//
// # 超时
//
// WithTimeout 为每次执行附加截止时间，任务通过 ctx 感知，Run 在截止时停止等待。
// 未设置时任务一旦开始执行就运行到结束。
package xtx
