// Package xrun 管理进程内多个长期运行任务的启动与协调关闭。
//
// Group 基于 errgroup：任一任务返回错误或调用 Cancel 时，其余任务的 ctx 被取消。
// Run 在 Group 之上增加信号处理，收到 SIGINT/SIGTERM 等信号时返回 *SignalError。
//
//	err := xrun.Run(ctx, []xrun.Option{xrun.WithLogger(logger)},
//		inbox.Watch,
//		xrun.Cron("@every 5m", rescan, logger),
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//		// 正常退出
//	}
package xrun
