package xtx

import "context"

//go:generate mockgen -source=xtx.go -destination=mock_xtx_test.go -package=xtx

// Scope 是事务资源上的一次作用域，由单个任务独占。
//
// Close 在任何退出路径上恰好调用一次；未 Commit 的 Scope 被 Close 时，
// 实现方应将其视为回滚。
type Scope interface {
	// Commit 提交事务，仅在任务成功后调用。
	Commit(ctx context.Context) error
	// Close 释放作用域。
	Close(ctx context.Context) error
}

// Resource 是可打开事务作用域的资源句柄，如图数据库会话工厂。
type Resource interface {
	// OpenScope 打开新的事务作用域。
	OpenScope(ctx context.Context) (Scope, error)
}

// Releaser 由需要在提交后释放句柄本地资源的 Resource 实现。
type Releaser interface {
	Release(ctx context.Context) error
}

// ContextBinder 由需要把会话绑定到任务 context 的 Scope 实现。
// 任务收到的 ctx 是 Bind 的返回值。
type ContextBinder interface {
	Bind(ctx context.Context) context.Context
}

// Task 是在事务作用域内执行的任务。
type Task[T any] func(ctx context.Context) (T, error)

// State 表示任务所处的执行阶段。
type State string

const (
	// StateCreated 任务已创建，尚未提交到 pool。
	StateCreated State = "created"
	// StateSubmitted 任务已被 worker 取出，作用域尚未打开。
	// 在队列中等待或处于背压中的任务还没有进入该状态。
	StateSubmitted State = "submitted"
	// StateRunning 任务正在 worker 上执行。
	StateRunning State = "running"
	// StateCommitted 任务成功且事务已提交。
	StateCommitted State = "committed"
	// StateRolledBack 任务失败，作用域未提交即关闭。
	StateRolledBack State = "rolled_back"
)

// Terminal 报告状态是否为终态。
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateRolledBack
}
