package xmongo

// Stats 包含 MongoDB 包装器的统计信息。
type Stats struct {
	// PingCount 健康检查次数。
	PingCount int64

	// PingErrors 健康检查失败次数。
	PingErrors int64

	// SessionsInProgress 活跃会话数，来自 NumberSessionsInProgress。
	SessionsInProgress int

	// ScopesOpened 已开启的事务作用域数。
	ScopesOpened int64

	// ScopesCommitted 已提交的事务数。
	ScopesCommitted int64

	// ScopesAborted 未提交即关闭（中止）的事务数。
	ScopesAborted int64
}
